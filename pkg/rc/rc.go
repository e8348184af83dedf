// Package rc reads and writes the .m365rc.json context file, whose
// "context" object supplies default option values to every command run in
// the same directory.
package rc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// FileName is the context file looked up in the working directory.
const FileName = ".m365rc.json"

const contextKey = "context"

// File is a context file in a directory. Keys other than "context" are
// kept as they are when the file is rewritten; comments are not.
type File struct {
	path string
}

// New returns the context file in dir.
func New(dir string) *File {
	return &File{path: filepath.Join(dir, FileName)}
}

// Path is the location of the file.
func (f *File) Path() string {
	return f.path
}

// read returns the top-level keys of the file, or an empty document when
// the file does not exist.
func (f *File) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	doc := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	return doc, nil
}

func (f *File) write(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", FileName, err)
	}
	if err := os.WriteFile(f.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", FileName, err)
	}
	return nil
}

func contextOf(doc map[string]json.RawMessage) (map[string]any, bool, error) {
	raw, ok := doc[contextKey]
	if !ok {
		return map[string]any{}, false, nil
	}
	ctx := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&ctx); err != nil {
		return nil, true, fmt.Errorf("failed to parse the context in %s: %w", FileName, err)
	}
	return ctx, true, nil
}

func setContext(doc map[string]json.RawMessage, ctx map[string]any) error {
	raw, err := json.Marshal(ctx)
	if err != nil {
		return fmt.Errorf("failed to encode the context: %w", err)
	}
	doc[contextKey] = raw
	return nil
}

// Init adds an empty context to the file, creating the file if needed.
// An existing context is left alone.
func (f *File) Init() error {
	doc, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := doc[contextKey]; ok {
		return nil
	}
	if err := setContext(doc, map[string]any{}); err != nil {
		return err
	}
	return f.write(doc)
}

// Remove deletes the context. The file itself is removed when nothing
// else is left in it.
func (f *File) Remove() error {
	doc, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := doc[contextKey]; !ok {
		return nil
	}
	delete(doc, contextKey)
	if len(doc) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", FileName, err)
		}
		return nil
	}
	return f.write(doc)
}

// Options returns the context options. A missing file or context yields
// no options.
func (f *File) Options() (map[string]any, error) {
	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	ctx, _, err := contextOf(doc)
	return ctx, err
}

// SetOption stores name=value in the context, creating it if needed.
func (f *File) SetOption(name string, value any) error {
	doc, err := f.read()
	if err != nil {
		return err
	}
	ctx, _, err := contextOf(doc)
	if err != nil {
		return err
	}
	ctx[name] = value
	if err := setContext(doc, ctx); err != nil {
		return err
	}
	return f.write(doc)
}

// RemoveOption deletes name from the context.
func (f *File) RemoveOption(name string) error {
	doc, err := f.read()
	if err != nil {
		return err
	}
	ctx, ok, err := contextOf(doc)
	if err != nil {
		return err
	}
	if _, present := ctx[name]; !ok || !present {
		return fmt.Errorf("There is no option %s in the context info", name)
	}
	delete(ctx, name)
	if err := setContext(doc, ctx); err != nil {
		return err
	}
	return f.write(doc)
}

// Defaults returns the context options as flag values: strings as they
// are, anything else as its JSON text.
func (f *File) Defaults() (map[string]string, error) {
	opts, err := f.Options()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(opts))
	for name, v := range opts {
		switch v := v.(type) {
		case string:
			out[name] = v
		case json.Number:
			out[name] = v.String()
		default:
			data, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to encode context option %s: %w", name, err)
			}
			out[name] = string(data)
		}
	}
	return out, nil
}
