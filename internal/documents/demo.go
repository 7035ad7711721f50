package documents

// DemoDocuments returns the built-in sample documents.
func DemoDocuments() []Document {
	text := func(s string) *string { return &s }
	return []Document{
		{ID: "doc-1", Filename: "Budget_2024.pdf", Content: text("This is the Strata Budget for 2024...")},
		{ID: "doc-2", Filename: "Minutes_AGM.docx", Content: text("Minutes of the Annual General Meeting...")},
		{ID: "doc-3", Filename: "Engineering_Report.txt", Content: text("Structural analysis reveals critical failures...")},
	}
}
