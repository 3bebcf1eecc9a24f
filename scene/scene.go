package scene

// Scene is the full set of objects for one snapshot.
type Scene struct {
	Objects   []*Object
	Ground    *Object
	Grid      *Object
	Particles *ParticleField

	machines  map[string]*Object
	workloads map[string]*Object
}

func newScene() *Scene {
	return &Scene{
		machines:  make(map[string]*Object),
		workloads: make(map[string]*Object),
	}
}

// Machine returns the volume of the named machine, or nil.
func (s *Scene) Machine(name string) *Object { return s.machines[name] }

// Workload returns the volume of a workload by namespace/name key, or nil.
func (s *Scene) Workload(key string) *Object { return s.workloads[key] }

// Count returns how many objects carry the given kind.
func (s *Scene) Count(k Kind) int {
	n := 0
	for _, o := range s.Objects {
		if o.Kind() == k {
			n++
		}
	}
	return n
}

// Pickable returns visible objects whose kind is one of kinds.
func (s *Scene) Pickable(kinds ...Kind) []*Object {
	var out []*Object
	for _, o := range s.Objects {
		if !o.Visible {
			continue
		}
		k := o.Kind()
		for _, want := range kinds {
			if k == want {
				out = append(out, o)
				break
			}
		}
	}
	return out
}

// Each calls fn for every visible object of kind k.
func (s *Scene) Each(k Kind, fn func(o *Object)) {
	for _, o := range s.Objects {
		if o.Visible && o.Kind() == k {
			fn(o)
		}
	}
}
