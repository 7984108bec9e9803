package codec

import (
	"io"

	"github.com/aretw0/tally/pkg/core"
	"gopkg.in/yaml.v3"
)

// EncodeYAML writes notes as a YAML sequence using the serialized note shape.
func EncodeYAML(w io.Writer, notes []core.Note) error {
	wires := make([]wireNote, len(notes))
	for i, n := range notes {
		wires[i] = toWire(n)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(wires); err != nil {
		return err
	}
	return enc.Close()
}

// DecodeYAML reads a YAML sequence of notes. Every record is treated as carrying facts.
func DecodeYAML(r io.Reader) ([]core.Note, error) {
	var wires []wireNote
	if err := yaml.NewDecoder(r).Decode(&wires); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	notes := make([]core.Note, 0, len(wires))
	for _, w := range wires {
		n, err := fromWire(w)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}
