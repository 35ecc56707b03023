package gltfdoc

import "encoding/json"

// Fields holds object members the model does not interpret.
// They are written back verbatim on encode.
type Fields map[string]json.RawMessage

// Extensions maps an extension name to its raw JSON payload.
type Extensions map[string]json.RawMessage

// decodeObject unmarshals data into v (an alias type without methods) and
// returns every member whose key is not listed in known.
func decodeObject(data []byte, v any, known ...string) (Fields, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	var all Fields
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// encodeObject marshals v and splices rest back in. Typed members win over
// a pass-through member with the same key.
func encodeObject(v any, rest Fields) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(rest) == 0 {
		return data, err
	}
	var all Fields
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for k, raw := range rest {
		if _, ok := all[k]; !ok {
			all[k] = raw
		}
	}
	return json.Marshal(all)
}

// decode unmarshals the named extension into v.
// It reports false when the extension is absent.
func (e Extensions) decode(name string, v any) (bool, error) {
	raw, ok := e[name]
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, err
	}
	return true, nil
}

// set marshals v into the named extension slot, allocating the map if needed.
func (e *Extensions) set(name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if *e == nil {
		*e = Extensions{}
	}
	(*e)[name] = raw
	return nil
}

// remove deletes the named extension and drops the map once it is empty.
func (e *Extensions) remove(name string) {
	if *e == nil {
		return
	}
	delete(*e, name)
	if len(*e) == 0 {
		*e = nil
	}
}
