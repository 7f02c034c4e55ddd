package changefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format selects the on-disk encoding of a plan.
type Format uint8

const (
	FormatMsgpack Format = iota
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatMsgpack:
		return "msgpack"
	case FormatJSON:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// ParseFormat accepts "json", "msgpack" and "mp".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return 0, fmt.Errorf("unknown plan format %q", s)
	}
}

// FormatFromPath picks the format by extension; anything but .json is msgpack.
func FormatFromPath(p string) Format {
	if strings.EqualFold(filepath.Ext(p), ".json") {
		return FormatJSON
	}
	return FormatMsgpack
}

// Encode writes plan to w.
func Encode(w io.Writer, plan *Plan, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetSortMapKeys(true)
		return enc.Encode(plan)
	default:
		return fmt.Errorf("encode plan: unknown format %s", format)
	}
}

// Decode reads a plan from r and validates it.
func Decode(r io.Reader, format Format) (*Plan, error) {
	var plan Plan
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&plan)
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(&plan)
	default:
		err = fmt.Errorf("unknown format %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Write stores plan at p, replacing any existing file atomically.
func Write(p string, plan *Plan) (err error) {
	dir := filepath.Dir(p)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".plan-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if err = Encode(f, plan, FormatFromPath(p)); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// атомарная замена
	return os.Rename(f.Name(), p)
}

// Read loads the plan stored at p.
func Read(p string) (plan *Plan, err error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	plan, err = Decode(f, FormatFromPath(p))
	if err != nil && !errors.Is(err, ErrSchema) {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return plan, err
}
