package workshop

import "strings"

// Export holds the three server configuration values, each a list of
// semicolon-terminated entries ready to paste.
type Export struct {
	WorkshopItems string
	Mods          string
	Maps          string
}

// Export formats the result for the game's server configuration.
func (r *Result) Export() Export {
	return Export{
		WorkshopItems: joinTerminated(r.WorkshopIDs()),
		Mods:          joinTerminated(r.ModIDs()),
		Maps:          joinTerminated(r.MapNames()),
	}
}

// Lines renders the export as server ini assignments.
func (e Export) Lines() []string {
	return []string{
		"WorkshopItems=" + e.WorkshopItems,
		"Mods=" + e.Mods,
		"Map=" + e.Maps,
	}
}

func (e Export) String() string {
	return strings.Join(e.Lines(), "\n")
}

func joinTerminated(values []string) string {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(v)
		b.WriteByte(';')
	}
	return b.String()
}
