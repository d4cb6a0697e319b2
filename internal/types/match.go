package types

// Match is one occurrence of a search pattern
type Match struct {
	Unit       Unit   // Owning unit
	Enclosing  Node   // Smallest enclosing construct, or UnitNode(Unit)
	Line       string // Trimmed text of the matched line
	Offset     int    // Raw byte offset of the match in the unit's text
	LineNumber int    // 1-based line number of the match
}

// HasConstruct reports whether the match resolved to a construct finer than its unit
func (m Match) HasConstruct() bool {
	return m.Enclosing.Kind != NodeKindUnit
}
