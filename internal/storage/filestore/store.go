// Package filestore persists tasks as a single JSON, YAML or TOML document.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/metalagman/taskq/internal/task"
)

// Format is the encoding of the task document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ParseFormat resolves a configured format, falling back to the path
// extension when value is empty.
func ParseFormat(value, path string) (Format, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			return FormatYAML, nil
		case ".toml":
			return FormatTOML, nil
		default:
			return FormatJSON, nil
		}
	}
	switch Format(value) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatTOML:
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported storage format %q (want json|yaml|toml)", value)
	}
}

// record is the on-disk shape of a task.
type record struct {
	Nombre           string   `json:"nombre"            toml:"nombre"            yaml:"nombre"`
	Prioridad        int      `json:"prioridad"         toml:"prioridad"         yaml:"prioridad"`
	FechaVencimiento string   `json:"fecha_vencimiento" toml:"fecha_vencimiento" yaml:"fecha_vencimiento"`
	Dependencias     []string `json:"dependencias"      toml:"dependencias"      yaml:"dependencias"`
}

// TOML has no top-level arrays, so records live under one table array.
const tomlKey = "tareas"

type tomlDocument struct {
	Tareas []record `toml:"tareas"`
}

// Options configures a Store.
type Options struct {
	Format      Format
	LockTimeout time.Duration
}

// Store reads and writes the task document at a fixed path.
type Store struct {
	path        string
	format      Format
	lockTimeout time.Duration
}

// New creates a document store. The file is not touched until Load or Save.
func New(path string, opts Options) *Store {
	format := opts.Format
	if format == "" {
		format, _ = ParseFormat("", path)
	}
	return &Store{path: path, format: format, lockTimeout: opts.LockTimeout}
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

// Save overwrites the document with tasks. The write goes to a temporary
// file which is renamed over the target while holding the lock.
func (s *Store) Save(ctx context.Context, tasks []task.Task) error {
	records := make([]record, 0, len(tasks))
	for _, t := range tasks {
		deps := t.Dependencies
		if deps == nil {
			deps = []string{}
		}
		records = append(records, record{
			Nombre:           t.Name,
			Prioridad:        t.Priority,
			FechaVencimiento: t.DueString(),
			Dependencias:     deps,
		})
	}
	data, err := s.encode(records)
	if err != nil {
		return &task.IOError{Op: "encode tasks", Path: s.path, Err: err}
	}

	lock, err := acquireLock(ctx, s.path, s.lockTimeout)
	if err != nil {
		return &task.IOError{Op: "lock", Path: s.path, Err: err}
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Warn().Err(err).Str("path", s.path).Msg("release task file lock")
		}
	}()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return &task.IOError{Op: "write", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return &task.IOError{Op: "replace", Path: s.path, Err: err}
	}
	log.Debug().Str("path", s.path).Int("count", len(records)).Msg("tasks saved")
	return nil
}

// Load reads the document. A missing file yields no tasks.
func (s *Store) Load(_ context.Context) ([]task.Task, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []task.Task{}, nil
	}
	if err != nil {
		return nil, &task.IOError{Op: "read", Path: s.path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []task.Task{}, nil
	}

	records, err := s.decode(data)
	if err != nil {
		return nil, &task.CorruptionError{Path: s.path, Err: err}
	}
	tasks := make([]task.Task, 0, len(records))
	for i, r := range records {
		due, err := task.ParseDate(r.FechaVencimiento)
		if err != nil {
			return nil, &task.CorruptionError{
				Path: s.path,
				Err:  fmt.Errorf("record %d (%q): fecha_vencimiento: %w", i, r.Nombre, err),
			}
		}
		tasks = append(tasks, task.New(r.Nombre, r.Prioridad, due, r.Dependencias))
	}
	return tasks, nil
}

func (s *Store) encode(records []record) ([]byte, error) {
	switch s.format {
	case FormatYAML:
		return yaml.Marshal(records)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(tomlDocument{Tareas: records}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
}

// decode parses, validates against the schema and converts the document
// into records.
func (s *Store) decode(data []byte) ([]record, error) {
	var doc any
	switch s.format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		doc = normalize(doc)
	case FormatTOML:
		var table map[string]any
		if err := toml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
		doc = normalize(table[tomlKey])
	default:
		// Numbers stay json.Number so large priorities survive exactly.
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, errors.New("parse json: trailing data after document")
		}
	}
	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	canonical, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("normalize document: %w", err)
	}
	var records []record
	if err := json.Unmarshal(canonical, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

// normalize rewrites values the YAML and TOML decoders resolve to non-JSON
// types: plain dates become YYYY-MM-DD strings and table arrays become
// generic slices.
func normalize(v any) any {
	switch val := v.(type) {
	case []any:
		for i := range val {
			val[i] = normalize(val[i])
		}
		return val
	case []map[string]any:
		out := make([]any, len(val))
		for i := range val {
			out[i] = normalize(val[i])
		}
		return out
	case map[string]any:
		for k, item := range val {
			val[k] = normalize(item)
		}
		return val
	case time.Time:
		return val.Format(task.DateLayout)
	default:
		return v
	}
}
