// Package loader reads and writes BACnet network documents in YAML or JSON.
//
// Loading performs structural validation only: every entity gets an id and
// ids are unique within their collection. Everything else, including bad
// instance numbers and dangling references, is left for the checks.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/topocheck/pkg/model"
	"github.com/newtron-network/topocheck/pkg/util"
)

// DefaultPatterns are matched by LoadDir when no pattern is given.
var DefaultPatterns = []string{"*.yaml", "*.yml", "*.json"}

// LoadFile reads one document. The document name is the file's name key,
// else the base file name without extension.
func LoadFile(path string) (*model.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	base := filepath.Base(path)
	doc, err := Parse(data, strings.TrimSuffix(base, filepath.Ext(base)))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	util.WithDocument(doc.Name).Debugf("loaded %s from %s", doc.Summary(), path)
	return doc, nil
}

// LoadDir loads every file in dir matching pattern, sorted by file name.
// An empty pattern matches YAML and JSON files.
func LoadDir(dir, pattern string) ([]*model.Document, error) {
	patterns := DefaultPatterns
	if pattern != "" {
		patterns = []string{pattern}
	}

	seen := map[string]bool{}
	var paths []string
	for _, p := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, p))
		if err != nil {
			return nil, fmt.Errorf("%w: bad pattern %q: %v", util.ErrInvalidConfig, p, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)

	docs := make([]*model.Document, 0, len(paths))
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			continue
		}
		doc, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	util.Debugf("loaded %d documents from %s", len(docs), dir)
	return docs, nil
}

// LoadPaths loads files and directories in argument order.
func LoadPaths(paths []string) ([]*model.Document, error) {
	var docs []*model.Document
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if info.IsDir() {
			dirDocs, err := LoadDir(path, "")
			if err != nil {
				return nil, err
			}
			docs = append(docs, dirDocs...)
			continue
		}
		doc, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Parse decodes one document. defaultName is used when the data carries no
// name key. Empty input yields an empty document.
func Parse(data []byte, defaultName string) (*model.Document, error) {
	var f File
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	if f.Name == "" {
		f.Name = defaultName
	}
	return f.Document()
}

// Document converts the file into a model document, synthesizing missing
// ids and rejecting duplicate ones.
func (f *File) Document() (*model.Document, error) {
	v := util.NewValidationBuilder(f.Name)
	doc := &model.Document{Name: f.Name}

	ids := newIDSet(v)
	for i, e := range f.Devices {
		doc.Devices = append(doc.Devices, model.Device{
			ID:               ids.take("device", i, e.ID),
			Instance:         string(e.Instance),
			VendorID:         string(e.VendorID),
			Address:          string(e.Address),
			Network:          string(e.Network),
			Subnet:           string(e.Subnet),
			Label:            e.Label,
			ModelName:        e.ModelName,
			DeviceName:       e.DeviceName,
			FirmwareRevision: string(e.FirmwareRevision),
		})
	}

	ids = newIDSet(v)
	for i, e := range f.Networks {
		n := model.Network{
			ID:    ids.take("network", i, e.ID),
			Label: e.Label,
			Type:  e.Type,
		}
		if e.Number != "" {
			num, err := strconv.Atoi(string(e.Number))
			if err != nil || num < 0 {
				v.AddErrorf("network %s: number %q is not a non-negative integer", n.ID, e.Number)
			}
			n.Number = num
		}
		doc.Networks = append(doc.Networks, n)
	}

	ids = newIDSet(v)
	for i, e := range f.Subnets {
		doc.Subnets = append(doc.Subnets, model.Subnet{
			ID:      ids.take("subnet", i, e.ID),
			Address: e.Address,
			Network: string(e.Network),
		})
	}

	ids = newIDSet(v)
	for i, e := range f.Routers {
		doc.Routers = append(doc.Routers, model.Router{
			ID:             ids.take("router", i, e.ID),
			Networks:       scalars(e.Networks),
			Unidirectional: e.Unidirectional,
		})
	}

	ids = newIDSet(v)
	for i, e := range f.BBMDs {
		doc.Relays = append(doc.Relays, model.BroadcastRelay{
			ID:      ids.take("bbmd", i, e.ID),
			Subnet:  string(e.Subnet),
			Address: string(e.Address),
			BDT:     scalars(e.BDT),
		})
	}

	if err := v.Build(); err != nil {
		return nil, err
	}
	return doc, nil
}

// idSet hands out ids for one collection and records duplicates.
type idSet struct {
	v    *util.ValidationBuilder
	seen map[string]bool
}

func newIDSet(v *util.ValidationBuilder) *idSet {
	return &idSet{v: v, seen: map[string]bool{}}
}

func (s *idSet) take(kind string, index int, id Scalar) string {
	out := string(id)
	if out == "" {
		out = fmt.Sprintf("%s-%d", kind, index+1)
	}
	if s.seen[out] {
		s.v.AddErrorf("duplicate %s id %q", kind, out)
	}
	s.seen[out] = true
	return out
}

// FromDocument converts a model document back into its file shape.
func FromDocument(doc *model.Document) *File {
	f := &File{Name: doc.Name}
	for _, d := range doc.Devices {
		f.Devices = append(f.Devices, DeviceEntry{
			ID:               Scalar(d.ID),
			Instance:         Scalar(d.Instance),
			VendorID:         Scalar(d.VendorID),
			Address:          Scalar(d.Address),
			Network:          Scalar(d.Network),
			Subnet:           Scalar(d.Subnet),
			Label:            d.Label,
			ModelName:        d.ModelName,
			DeviceName:       d.DeviceName,
			FirmwareRevision: Scalar(d.FirmwareRevision),
		})
	}
	for _, n := range doc.Networks {
		e := NetworkEntry{ID: Scalar(n.ID), Label: n.Label, Type: n.Type}
		if n.Number != 0 {
			e.Number = Scalar(strconv.Itoa(n.Number))
		}
		f.Networks = append(f.Networks, e)
	}
	for _, s := range doc.Subnets {
		f.Subnets = append(f.Subnets, SubnetEntry{ID: Scalar(s.ID), Address: s.Address, Network: Scalar(s.Network)})
	}
	for _, r := range doc.Routers {
		f.Routers = append(f.Routers, RouterEntry{
			ID:             Scalar(r.ID),
			Networks:       fromStrings(r.Networks),
			Unidirectional: r.Unidirectional,
		})
	}
	for _, r := range doc.Relays {
		f.BBMDs = append(f.BBMDs, BBMDEntry{
			ID:      Scalar(r.ID),
			Subnet:  Scalar(r.Subnet),
			Address: Scalar(r.Address),
			BDT:     fromStrings(r.BDT),
		})
	}
	return f
}

// Write encodes doc as YAML.
func Write(w io.Writer, doc *model.Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FromDocument(doc)); err != nil {
		return fmt.Errorf("encoding %s: %w", doc.Name, err)
	}
	return enc.Close()
}

// WriteFile writes doc as YAML to path.
func WriteFile(path string, doc *model.Document) error {
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	util.WithDocument(doc.Name).Infof("wrote %s to %s", doc.Summary(), path)
	return nil
}
