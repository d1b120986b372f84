package registration

// Country pairs a display name with its phone dialing code.
type Country struct {
	Name        string
	DialingCode string
}

// CountryTable is the fixed set of selectable countries. It is passed in
// explicitly so the state machine carries no hidden process-wide data and
// the table stays unit-testable in isolation.
type CountryTable struct {
	entries []Country
	index   map[string]string
}

// NewCountryTable builds a table preserving entry order for keyboards.
func NewCountryTable(entries []Country) *CountryTable {
	index := make(map[string]string, len(entries))
	for _, entry := range entries {
		index[entry.Name] = entry.DialingCode
	}
	return &CountryTable{entries: entries, index: index}
}

// DialingCode resolves a country name to its dialing code.
func (t *CountryTable) DialingCode(name string) (string, bool) {
	code, ok := t.index[name]
	return code, ok
}

// KeyboardRows lays the country names out for a choice keyboard.
func (t *CountryTable) KeyboardRows(perRow int) [][]string {
	if perRow < 1 {
		perRow = 1
	}
	var rows [][]string
	for i := 0; i < len(t.entries); i += perRow {
		end := i + perRow
		if end > len(t.entries) {
			end = len(t.entries)
		}
		row := make([]string, 0, end-i)
		for _, entry := range t.entries[i:end] {
			row = append(row, entry.Name)
		}
		rows = append(rows, row)
	}
	return rows
}

// DefaultCountries is the table the bot ships with.
func DefaultCountries() []Country {
	return []Country{
		{Name: "Saudi Arabia", DialingCode: "+966"},
		{Name: "Egypt", DialingCode: "+20"},
		{Name: "Syria", DialingCode: "+963"},
		{Name: "Jordan", DialingCode: "+962"},
		{Name: "UAE", DialingCode: "+971"},
		{Name: "Kuwait", DialingCode: "+965"},
		{Name: "Qatar", DialingCode: "+974"},
		{Name: "Oman", DialingCode: "+968"},
	}
}

// DefaultGenders is the fixed pair of accepted gender literals.
func DefaultGenders() []string {
	return []string{"Male", "Female"}
}
