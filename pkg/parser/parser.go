// Package parser provides functions to load and parse XML schema-migration documents
package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/veldtlabs/pg-schema-gen/pkg/schema"
)

var baseFS fs.FS

// SetBaseFS sets the base filesystem for reading schema documents.
// Use an embed.FS to read from embedded files.
// Pass nil to revert to the OS filesystem.
func SetBaseFS(fsys fs.FS) {
	baseFS = fsys
}

func BaseFS() fs.FS {
	return baseFS
}

// FromFile parses a schema-migration document from a file
func FromFile(path string) (*schema.Document, error) {
	var r io.ReadCloser
	var err error
	if baseFS != nil {
		r, err = baseFS.Open(path)
	} else {
		r, err = os.Open(filepath.Clean(path))
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		_ = r.Close()
	}()

	doc, err := FromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// FromReader parses a schema-migration document from a reader.
// The root element's name is not interpreted; its children are decoded as
// commands in document order. Unrecognized elements are preserved with
// kind Unknown so generators can warn about them.
func FromReader(r io.Reader) (*schema.Document, error) {
	dec := xml.NewDecoder(r)
	doc := &schema.Document{}

	root, err := nextStart(dec)
	if err != nil {
		return nil, fmt.Errorf("read root element: %w", err)
	}
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			cmd, err := decodeCommand(dec, t)
			if err != nil {
				return nil, err
			}
			doc.Commands = append(doc.Commands, cmd)
		case xml.EndElement:
			if t.Name.Local == root.Name.Local {
				return doc, nil
			}
		}
	}

	return doc, nil
}

// nextStart advances the decoder to the first start element
func nextStart(dec *xml.Decoder) (*xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return &se, nil
		}
	}
}

func decodeCommand(dec *xml.Decoder, se xml.StartElement) (schema.Command, error) {
	attrs := attrMap(se)

	cmd := schema.Command{
		Tag:       se.Name.Local,
		Name:      attrs["name"],
		Namespace: attrs["namespace"],
		History:   schema.ParseBool(attrs["history"], false),
	}

	switch se.Name.Local {
	case "createExtension":
		cmd.Kind = schema.CreateExtension
	case "addTable":
		cmd.Kind = schema.AddTable
	case "removeTable":
		cmd.Kind = schema.RemoveTable
	default:
		cmd.Kind = schema.UnknownCommand
	}

	for {
		tok, err := dec.Token()
		if err != nil {
			return cmd, fmt.Errorf("read <%s>: %w", se.Name.Local, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			op := decodeOperation(t)
			if err := dec.Skip(); err != nil {
				return cmd, fmt.Errorf("read <%s>: %w", t.Name.Local, err)
			}
			cmd.Children = append(cmd.Children, op)
		case xml.EndElement:
			return cmd, nil
		}
	}
}

func decodeOperation(se xml.StartElement) schema.Operation {
	attrs := attrMap(se)

	op := schema.Operation{
		Tag:  se.Name.Local,
		Name: attrs["name"],
	}

	switch se.Name.Local {
	case "addColumn":
		op.Kind = schema.AddColumn
		op.Type = attrs["type"]
		op.Nullable = schema.ParseBool(attrs["nullable"], true)
		op.PrimaryKey = schema.ParseBool(attrs["primaryKey"], false)
		op.Unique = schema.ParseBool(attrs["unique"], false)
		if v, ok := attrs["default"]; ok {
			op.Default = &v
		}
	case "removeColumn":
		op.Kind = schema.RemoveColumn
	case "addForeignKey":
		op.Kind = schema.AddForeignKey
		op.Column = attrs["column"]
		op.RefTable = attrs["refTable"]
		op.RefColumn = attrs["refColumn"]
		op.OnDelete = attrs["onDelete"]
		op.OnUpdate = attrs["onUpdate"]
	case "addIndex":
		op.Kind = schema.AddIndex
		op.Columns = attrs["columns"]
		op.Update = schema.ParseBool(attrs["update"], false)
	case "removeIndex":
		op.Kind = schema.RemoveIndex
	default:
		op.Kind = schema.UnknownOp
	}

	return op
}

type attrs map[string]string

func attrMap(se xml.StartElement) attrs {
	m := make(attrs, len(se.Attr))
	for _, a := range se.Attr {
		m[a.Name.Local] = a.Value
	}
	return m
}
