package db3image

import "fmt"

// SchemaEntry is a typed projection of one row of the sqlite_master table
// that lives on page 0 of every db3 file. Decoding it is schema decoding,
// not schema interpretation: db3image never parses the SQL text, it just
// hands the column values back typed.
type SchemaEntry struct {
	Type     string
	Name     string
	TblName  string
	RootPage int64
	SQL      string
}

// ErrNotSchemaPage is returned by GetSchema when page 0 isn't a leaf table
// page, which would mean the image isn't a valid db3 file.
var ErrNotSchemaPage = fmt.Errorf("db3image: page 0 is not a leaf table page")

// GetSchema decodes page 0's cells into typed sqlite_master rows. It is a
// thin convenience wrapper: GetPage(0) already carries this data as
// generic Record/Atom values, this just does the well-known 5-column
// projection for callers who don't want to do it themselves.
func (r *Reader) GetSchema() ([]SchemaEntry, error) {
	p, err := r.GetPage(0)
	if err != nil {
		return nil, err
	}
	if p.Header.Type != PageLeafTable {
		return nil, ErrNotSchemaPage
	}

	entries := make([]SchemaEntry, 0, len(p.Cells))
	for _, c := range p.Cells {
		leaf, ok := c.(LeafTableCell)
		if !ok {
			continue
		}

		entry, err := schemaEntryFromColumns(leaf.Record.Columns)
		if err != nil {
			return nil, fmt.Errorf("db3image: get_schema: rowid %d: %w", leaf.RowID, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func schemaEntryFromColumns(columns []*Atom) (SchemaEntry, error) {
	if len(columns) < 5 {
		return SchemaEntry{}, fmt.Errorf("expected 5 schema columns, got %d", len(columns))
	}

	typ, err := atomText(columns[0])
	if err != nil {
		return SchemaEntry{}, fmt.Errorf("type: %w", err)
	}
	name, err := atomText(columns[1])
	if err != nil {
		return SchemaEntry{}, fmt.Errorf("name: %w", err)
	}
	tblName, err := atomText(columns[2])
	if err != nil {
		return SchemaEntry{}, fmt.Errorf("tbl_name: %w", err)
	}
	rootPage := atomInt(columns[3])
	sql, err := atomText(columns[4])
	if err != nil {
		return SchemaEntry{}, fmt.Errorf("sql: %w", err)
	}

	return SchemaEntry{
		Type:     typ,
		Name:     name,
		TblName:  tblName,
		RootPage: rootPage,
		SQL:      sql,
	}, nil
}

func atomText(a *Atom) (string, error) {
	if a == nil {
		return "", nil
	}
	if a.Kind != AtomText {
		return "", fmt.Errorf("expected text atom, got kind %v", a.Kind)
	}
	return a.Encoding.Decode(a.Bytes)
}

func atomInt(a *Atom) int64 {
	if a == nil {
		return 0
	}
	return a.Int
}
