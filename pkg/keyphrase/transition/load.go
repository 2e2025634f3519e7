package transition

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cognicore/keyphrase/pkg/keyphrase/internalerr"
)

// Load reads a table, choosing the decoder from the file extension:
// .json for the two-level JSON mapping, .msgpack or .mpk for its binary form.
func Load(path string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(path)
	case ".msgpack", ".mpk":
		return LoadMsgpack(path)
	default:
		return nil, fmt.Errorf("%w: unsupported transition table format %q", internalerr.ErrInvalidInput, path)
	}
}

// LoadJSON reads the JSON form: {"<tag>": {"<two_back>_<one_back>": p}}.
func LoadJSON(path string) (*Table, error) {
	var data map[string]map[string]float64
	err := withMapped(path, func(b []byte) error {
		return json.Unmarshal(b, &data)
	})
	if err != nil {
		return nil, fmt.Errorf("load transitions %s: %w", path, err)
	}
	return &Table{probs: nonNil(data)}, nil
}

// LoadMsgpack reads the msgpack form written by WriteMsgpack.
func LoadMsgpack(path string) (*Table, error) {
	var data map[string]map[string]float64
	err := withMapped(path, func(b []byte) error {
		return msgpack.Unmarshal(b, &data)
	})
	if err != nil {
		return nil, fmt.Errorf("load transitions %s: %w", path, err)
	}
	return &Table{probs: nonNil(data)}, nil
}

// ReadJSON decodes the JSON form from a stream.
func ReadJSON(r io.Reader) (*Table, error) {
	var data map[string]map[string]float64
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode transitions: %w", err)
	}
	return &Table{probs: nonNil(data)}, nil
}

// WriteMsgpack encodes the table in its binary form.
func (t *Table) WriteMsgpack(w io.Writer) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	return enc.Encode(t.data())
}

// WriteJSON encodes the table in its JSON form.
func (t *Table) WriteJSON(w io.Writer) error {
	return json.NewEncoder(w).Encode(t.data())
}

// withMapped maps the file read-only for the duration of fn. The decoders
// copy what they keep, so the mapping is released before returning.
func withMapped(path string, fn func([]byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: empty transition table", internalerr.ErrInvalidInput)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		// Some filesystems refuse mappings; read normally instead.
		b, readErr := io.ReadAll(f)
		if readErr != nil {
			return fmt.Errorf("mmap: %v; read: %w", err, readErr)
		}
		return fn(b)
	}
	defer m.Unmap()
	return fn(m)
}

func nonNil(data map[string]map[string]float64) map[string]map[string]float64 {
	if data == nil {
		return make(map[string]map[string]float64)
	}
	for tag, contexts := range data {
		if contexts == nil {
			data[tag] = make(map[string]float64)
		}
	}
	return data
}
