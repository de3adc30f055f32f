package cookies

// NewExporterWithReader lets tests substitute the browser cookie reader.
func NewExporterWithReader(read Reader, domainOverride string) *Exporter {
	return &Exporter{read: read, domainOverride: domainOverride}
}
