package tehom

import "github.com/yvileapsis/TEHOM-old-sub000/ecs"

// The FrameN accessors resolve an entity once and return typed refs to N of
// its components at that row. They exist to batch component access inside one
// frame stage; the refs are invalidated by any shape change, exactly like
// ecs.Slot.

func Frame2[A, B any](h ecs.EntityHandle, nameA, nameB string) (*A, *B, error) {
	slot, err := h.Resolve()
	if err != nil {
		return nil, nil, err
	}
	a, err := ecs.AtSlot[A](slot, nameA)
	if err != nil {
		return nil, nil, err
	}
	b, err := ecs.AtSlot[B](slot, nameB)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func Frame3[A, B, C any](h ecs.EntityHandle, nameA, nameB, nameC string) (*A, *B, *C, error) {
	a, b, err := Frame2[A, B](h, nameA, nameB)
	if err != nil {
		return nil, nil, nil, err
	}
	slot, err := h.Resolve()
	if err != nil {
		return nil, nil, nil, err
	}
	c, err := ecs.AtSlot[C](slot, nameC)
	if err != nil {
		return nil, nil, nil, err
	}
	return a, b, c, nil
}

func Frame4[A, B, C, D any](h ecs.EntityHandle, nameA, nameB, nameC, nameD string) (*A, *B, *C, *D, error) {
	a, b, c, err := Frame3[A, B, C](h, nameA, nameB, nameC)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	slot, err := h.Resolve()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	d, err := ecs.AtSlot[D](slot, nameD)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return a, b, c, d, nil
}

func Frame5[A, B, C, D, E any](
	h ecs.EntityHandle, nameA, nameB, nameC, nameD, nameE string,
) (*A, *B, *C, *D, *E, error) {
	a, b, c, d, err := Frame4[A, B, C, D](h, nameA, nameB, nameC, nameD)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	slot, err := h.Resolve()
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	e, err := ecs.AtSlot[E](slot, nameE)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	return a, b, c, d, e, nil
}

func Frame6[A, B, C, D, E, F any](
	h ecs.EntityHandle, nameA, nameB, nameC, nameD, nameE, nameF string,
) (*A, *B, *C, *D, *E, *F, error) {
	a, b, c, d, e, err := Frame5[A, B, C, D, E](h, nameA, nameB, nameC, nameD, nameE)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, err
	}
	slot, err := h.Resolve()
	if err != nil {
		return nil, nil, nil, nil, nil, nil, err
	}
	f, err := ecs.AtSlot[F](slot, nameF)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, err
	}
	return a, b, c, d, e, f, nil
}

func Frame7[A, B, C, D, E, F, G any](
	h ecs.EntityHandle, nameA, nameB, nameC, nameD, nameE, nameF, nameG string,
) (*A, *B, *C, *D, *E, *F, *G, error) {
	a, b, c, d, e, f, err := Frame6[A, B, C, D, E, F](h, nameA, nameB, nameC, nameD, nameE, nameF)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, err
	}
	slot, err := h.Resolve()
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, err
	}
	g, err := ecs.AtSlot[G](slot, nameG)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, err
	}
	return a, b, c, d, e, f, g, nil
}

func Frame8[A, B, C, D, E, F, G, H any](
	h ecs.EntityHandle, nameA, nameB, nameC, nameD, nameE, nameF, nameG, nameH string,
) (*A, *B, *C, *D, *E, *F, *G, *H, error) {
	a, b, c, d, e, f, g, err := Frame7[A, B, C, D, E, F, G](h, nameA, nameB, nameC, nameD, nameE, nameF, nameG)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, nil, err
	}
	slot, err := h.Resolve()
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, nil, err
	}
	hh, err := ecs.AtSlot[H](slot, nameH)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, nil, err
	}
	return a, b, c, d, e, f, g, hh, nil
}

func Frame9[A, B, C, D, E, F, G, H, I any](
	h ecs.EntityHandle, nameA, nameB, nameC, nameD, nameE, nameF, nameG, nameH, nameI string,
) (*A, *B, *C, *D, *E, *F, *G, *H, *I, error) {
	a, b, c, d, e, f, g, hh, err := Frame8[A, B, C, D, E, F, G, H](
		h, nameA, nameB, nameC, nameD, nameE, nameF, nameG, nameH)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, nil, nil, err
	}
	slot, err := h.Resolve()
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, nil, nil, err
	}
	i, err := ecs.AtSlot[I](slot, nameI)
	if err != nil {
		return nil, nil, nil, nil, nil, nil, nil, nil, nil, err
	}
	return a, b, c, d, e, f, g, hh, i, nil
}
