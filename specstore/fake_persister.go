package specstore

import "strings"

// FakePersister is an in-memory Persister used in tests in place of
// the bbolt-backed implementation, mirroring the teacher's pattern of
// a hand-written fake standing in for a real store's narrow interface.
type FakePersister struct {
	data map[string]map[string][]byte
}

// NewFakePersister builds an empty FakePersister.
func NewFakePersister() *FakePersister {
	return &FakePersister{data: make(map[string]map[string][]byte)}
}

func (f *FakePersister) Get(namespace, key string) ([]byte, error) {
	ns, ok := f.data[namespace]
	if !ok {
		return nil, ErrNotFound
	}
	v, ok := ns[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (f *FakePersister) BatchGet(namespace string, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	ns, ok := f.data[namespace]
	if !ok {
		return out, nil
	}
	for _, k := range keys {
		if v, ok := ns[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (f *FakePersister) BatchPut(namespace string, values map[string][]byte) error {
	ns, ok := f.data[namespace]
	if !ok {
		ns = make(map[string][]byte)
		f.data[namespace] = ns
	}
	for k, v := range values {
		ns[k] = v
	}
	return nil
}

func (f *FakePersister) Namespaces(prefix string) ([]string, error) {
	var out []string
	for ns := range f.data {
		if strings.HasPrefix(ns, prefix) {
			out = append(out, ns)
		}
	}
	return out, nil
}
