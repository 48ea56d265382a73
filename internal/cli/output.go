package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Snapshot:
		o.printSnapshot(v)
	case []AliasEntry:
		o.printAliasEntries(v)
	case AliasEntry:
		o.printAliasEntry(v)
	case Resolution:
		o.printResolution(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Stats response type (matches API)
type Stats struct {
	Stars       float64 `json:"stars"`
	FinalKills  int     `json:"final_kills"`
	FinalDeaths int     `json:"final_deaths"`
	FKDR        float64 `json:"fkdr"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WLR         float64 `json:"wlr"`
	Winstreak   int     `json:"winstreak"`
}

// Row response type
type Row struct {
	Username string `json:"username"`
	UUID     string `json:"uuid,omitempty"`
	InParty  bool   `json:"in_party"`
	Outcome  string `json:"outcome"`
	Stats    *Stats `json:"stats,omitempty"`
}

// Snapshot response type
type Snapshot struct {
	Seq       uint64    `json:"seq"`
	Rows      []Row     `json:"rows"`
	OutOfSync bool      `json:"out_of_sync"`
	TakenAt   time.Time `json:"taken_at"`
}

// AliasEntry response type
type AliasEntry struct {
	Alias     string    `json:"alias"`
	UUID      string    `json:"uuid"`
	Note      string    `json:"note,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Resolution response type
type Resolution struct {
	Name     string `json:"name"`
	Resolved bool   `json:"resolved"`
	UUID     string `json:"uuid,omitempty"`
	Username string `json:"username,omitempty"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printSnapshot(s Snapshot) {
	if s.OutOfSync {
		fmt.Println("WARNING: roster may be out of sync")
	}
	fmt.Printf("Players (%d), pass %d:\n", len(s.Rows), s.Seq)
	for _, row := range s.Rows {
		marker := " "
		if row.InParty {
			marker = "*"
		}
		switch {
		case row.Stats != nil:
			fmt.Printf("  %s %-16s  %6.1f✫  FKDR %5.2f  WLR %5.2f  WS %d\n",
				marker, row.Username, row.Stats.Stars,
				row.Stats.FKDR, row.Stats.WLR, row.Stats.Winstreak)
		default:
			fmt.Printf("  %s %-16s  [%s]\n", marker, row.Username, row.Outcome)
		}
	}
}

func (o *Output) printAliasEntries(entries []AliasEntry) {
	if len(entries) == 0 {
		fmt.Println("No aliases configured")
		return
	}
	fmt.Printf("Aliases (%d):\n", len(entries))
	for _, e := range entries {
		o.printAliasEntry(e)
	}
}

func (o *Output) printAliasEntry(e AliasEntry) {
	if e.Note != "" {
		fmt.Printf("  %s -> %s (%s)\n", e.Alias, e.UUID, e.Note)
	} else {
		fmt.Printf("  %s -> %s\n", e.Alias, e.UUID)
	}
}

func (o *Output) printResolution(r Resolution) {
	if !r.Resolved {
		fmt.Printf("%s: unresolved (likely nicked)\n", r.Name)
		return
	}
	fmt.Printf("%s -> %s (%s)\n", r.Name, r.Username, r.UUID)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
