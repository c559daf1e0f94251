package plasma

import "github.com/pkg/errors"

type keyID struct {
	t    Type
	name string
	loc  Location
}

// Registry owns every keyed object of one export session. An object is
// identified by (type, name, location); allocating an identity that already
// exists returns the previously created object.
type Registry struct {
	keys    map[keyID]*Key
	objects map[*Key]Object
	order   []*Key
}

func NewRegistry() *Registry {
	return &Registry{
		keys:    make(map[keyID]*Key),
		objects: make(map[*Key]Object),
	}
}

// FindKey returns the key for an identity, or nil if nothing was allocated
// under it.
func (r *Registry) FindKey(t Type, name string, loc Location) *Key {
	return r.keys[keyID{t, name, loc}]
}

// Find returns the object for an identity, or nil.
func (r *Registry) Find(t Type, name string, loc Location) Object {
	if k := r.FindKey(t, name, loc); k != nil {
		return r.objects[k]
	}
	return nil
}

// FindOrCreate looks an identity up, calling create only when it is new.
// The returned object is always the one stored under the identity.
func (r *Registry) FindOrCreate(t Type, name string, loc Location, create func() Object) Object {
	id := keyID{t, name, loc}
	if k, ok := r.keys[id]; ok {
		return r.objects[k]
	}
	k := &Key{Type: t, Name: name, Location: loc}
	obj := create()
	obj.setKey(k)
	r.keys[id] = k
	r.objects[k] = obj
	r.order = append(r.order, k)
	return obj
}

// Object resolves a key back to its object.
func (r *Registry) Object(k *Key) Object {
	return r.objects[k]
}

// Locations lists every page touched so far, in first-use order.
func (r *Registry) Locations() []Location {
	seen := make(map[Location]bool)
	var locs []Location
	for _, k := range r.order {
		if !seen[k.Location] {
			seen[k.Location] = true
			locs = append(locs, k.Location)
		}
	}
	return locs
}

// ObjectsAt returns a page's objects in allocation order.
func (r *Registry) ObjectsAt(loc Location) []Object {
	var objs []Object
	for _, k := range r.order {
		if k.Location == loc {
			objs = append(objs, r.objects[k])
		}
	}
	return objs
}

// Len returns the total object count.
func (r *Registry) Len() int {
	return len(r.order)
}

// Verify checks the registry's internal identity contract; a failure here is
// a bug, not a user error.
func (r *Registry) Verify() error {
	for id, k := range r.keys {
		if k.Type != id.t || k.Name != id.name || k.Location != id.loc {
			return errors.Errorf("registry key %v does not match its index entry %+v", k, id)
		}
		if r.objects[k] == nil {
			return errors.Errorf("registry key %v has no object", k)
		}
	}
	return nil
}
