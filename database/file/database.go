package file

import (
	"context"

	"github.com/sqldef/pgschemadiff"
	"github.com/sqldef/pgschemadiff/schema"
)

// Pseudo database reading a YAML schema description, for comparison between files
type FileDatabase struct {
	file string
}

func NewDatabase(file string) *FileDatabase {
	return &FileDatabase{
		file: file,
	}
}

func (f *FileDatabase) ExportSchema(ctx context.Context) (*schema.DatabaseSchema, error) {
	buf, err := pgschemadiff.ReadFile(f.file)
	if err != nil {
		return nil, err
	}
	return ParseSchema([]byte(buf))
}

func (f *FileDatabase) Close() error {
	return nil
}

// StringDatabase is a schema description held in memory, e.g. given by a browser.
type StringDatabase string

func (s StringDatabase) ExportSchema(ctx context.Context) (*schema.DatabaseSchema, error) {
	return ParseSchema([]byte(s))
}

func (s StringDatabase) Close() error {
	return nil
}
