package pattern

// TestTable lists individual test verdicts, typically only the failures.
type TestTable struct {
	Label   string
	Results []TestTableItem
}

// TestTableItem is one test script and why it ended the way it did.
type TestTableItem struct {
	Name    string // input path
	Status  string // "pass", "fail", "skip"
	Ratio   string // formatted speedup ratio, empty when not measured
	Details string // failure reason, possibly multi-line
}

func (t *TestTable) Type() PatternType { return PatternTypeTestTable }
