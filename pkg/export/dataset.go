package export

// Dataset is an ordered table ready for spreadsheet rendering. Row values
// follow the header order.
type Dataset struct {
	Headers []string
	Rows    [][]string
}
