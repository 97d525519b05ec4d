package serialization

import "encoding/json"

// Serializer converts vault records to and from the byte form that gets encrypted.
type Serializer interface {
	// Serialize returns the byte representation of v.
	Serialize(v any) ([]byte, error)

	// Deserialize populates the value pointed to by v from data.
	Deserialize(data []byte, v any) error
}

// JSONSerializer implements Serializer with encoding/json. Records round-trip through
// it unchanged as long as their fields carry json tags, which every persisted type does.
type JSONSerializer struct{}

func (JSONSerializer) Serialize(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONSerializer) Deserialize(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
