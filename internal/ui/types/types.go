package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// =============================================================================
// API ENVELOPES
// =============================================================================

// Envelope is the part shared by every JSON response of the SAM api
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Count   int    `json:"count,omitempty"`
}

// Failed reports whether the backend flagged the response as unsuccessful.
func (e Envelope) Failed() bool {
	return !e.Success
}

// LocalitiesResponse is returned by GET /localidades
type LocalitiesResponse struct {
	Envelope
	Data []Locality `json:"data"`
}

// LocalityDetailResponse is returned by GET /localidade/{id}.
// Locality is kept raw so the selection merge can tell which fields the backend sent.
type LocalityDetailResponse struct {
	Envelope
	Locality     json.RawMessage `json:"localidade"`
	Students     []Student       `json:"alunos"`
	Statistics   map[string]any  `json:"estatisticas"`
	StudentCount int             `json:"count_alunos"`
}

// StudentResponse is returned by GET /aluno/{id}
type StudentResponse struct {
	Envelope
	Student Student        `json:"aluno"`
	History StudentHistory `json:"historico"`
}

// StudentSummariesResponse is returned by GET /resumo-alunos
type StudentSummariesResponse struct {
	Envelope
	Data []StudentSummary `json:"data"`
}

// ScrapingLogsResponse is returned by GET /logs-scraping
type ScrapingLogsResponse struct {
	Envelope
	Logs []ScrapingLogEntry `json:"logs"`
}

// GeneralStatsResponse is returned by GET /estatisticas/geral
type GeneralStatsResponse struct {
	Envelope
	Stats *GeneralStats `json:"estatisticas"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}

// =============================================================================
// DOMAIN PAYLOADS
// =============================================================================

// Locality is one row of the vw_resumo_localidades view.
// null counters decode as zero.
type Locality struct {
	ChurchID         int     `json:"id_igreja"`
	Name             string  `json:"nome_localidade"`
	Code             string  `json:"codigo_localidade"`
	Sector           Text    `json:"setor"`
	City             Text    `json:"cidade"`
	TotalStudents    int     `json:"total_alunos"`
	ActiveStudents   int     `json:"alunos_ativos"`
	TotalInstruments int     `json:"total_instrumentos"`
	TotalMTS         int     `json:"total_mts"`
	TotalMSA         int     `json:"total_msa"`
	TotalExams       int     `json:"total_provas"`
	AverageScore     float64 `json:"media_geral_provas"`
}

// Student is a row of the alunos table
type Student struct {
	ID             int    `json:"id_aluno"`
	Name           string `json:"nome"`
	ChurchID       int    `json:"id_igreja"`
	RoleID         int    `json:"id_cargo"`
	RoleName       string `json:"cargo_nome"`
	LevelID        int    `json:"id_nivel"`
	LevelName      string `json:"nivel_nome"`
	InstrumentID   int    `json:"id_instrumento"`
	InstrumentName string `json:"instrumento_nome"`
	Status         string `json:"status"`

	// Extra holds the columns this client does not model
	Extra map[string]json.RawMessage `json:"-"`
}

func (s *Student) UnmarshalJSON(data []byte) error {
	type plain Student
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, p)
	if err != nil {
		return err
	}
	*s = Student(p)
	s.Extra = extra
	return nil
}

func (s Student) MarshalJSON() ([]byte, error) {
	type plain Student
	return joinExtra(plain(s), s.Extra)
}

// StudentSummary is a row of the vw_resumo_alunos view
type StudentSummary struct {
	StudentID      int    `json:"id_aluno"`
	ChurchID       int    `json:"id_igreja"`
	Name           string `json:"nome"`
	InstrumentName string `json:"instrumento_nome"`
	LevelName      string `json:"nivel_nome"`
	Status         string `json:"status"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (s *StudentSummary) UnmarshalJSON(data []byte) error {
	type plain StudentSummary
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, p)
	if err != nil {
		return err
	}
	*s = StudentSummary(p)
	s.Extra = extra
	return nil
}

func (s StudentSummary) MarshalJSON() ([]byte, error) {
	type plain StudentSummary
	return joinExtra(plain(s), s.Extra)
}

// StudentHistory groups the per-student history tables returned with GET /aluno/{id}
type StudentHistory struct {
	MTSIndividual    []map[string]any `json:"mts_individual"`
	MTSGroup         []map[string]any `json:"mts_grupo"`
	MSAIndividual    []map[string]any `json:"msa_individual"`
	MSAGroup         []map[string]any `json:"msa_grupo"`
	Exams            []map[string]any `json:"provas"`
	HymnalIndividual []map[string]any `json:"hinario_individual"`
	HymnalGroup      []map[string]any `json:"hinario_grupo"`
	Methods          []map[string]any `json:"metodos"`
	ScalesIndividual []map[string]any `json:"escalas_individual"`
	ScalesGroup      []map[string]any `json:"escalas_grupo"`
}

// HistorySection is a named history list, used to render the section counts
type HistorySection struct {
	Name    string
	Entries int
}

// Sections lists the history tables in display order
func (h StudentHistory) Sections() []HistorySection {
	return []HistorySection{
		{"MTS individual", len(h.MTSIndividual)},
		{"MTS grupo", len(h.MTSGroup)},
		{"MSA individual", len(h.MSAIndividual)},
		{"MSA grupo", len(h.MSAGroup)},
		{"Provas", len(h.Exams)},
		{"Hinário individual", len(h.HymnalIndividual)},
		{"Hinário grupo", len(h.HymnalGroup)},
		{"Métodos", len(h.Methods)},
		{"Escalas individual", len(h.ScalesIndividual)},
		{"Escalas grupo", len(h.ScalesGroup)},
	}
}

// ScrapingLogEntry is a row of the log_scraping table
type ScrapingLogEntry struct {
	ID              int    `json:"id"`
	ExecutedAt      string `json:"data_execucao"`
	Module          string `json:"modulo"`
	Status          string `json:"status"`
	Processed       int    `json:"registros_processados"`
	Succeeded       int    `json:"registros_sucesso"`
	Failed          int    `json:"registros_erro"`
	DurationSeconds int    `json:"tempo_execucao_segundos"`
	ErrorMessage    string `json:"mensagem_erro"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (l *ScrapingLogEntry) UnmarshalJSON(data []byte) error {
	type plain ScrapingLogEntry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := splitExtra(data, p)
	if err != nil {
		return err
	}
	*l = ScrapingLogEntry(p)
	l.Extra = extra
	return nil
}

func (l ScrapingLogEntry) MarshalJSON() ([]byte, error) {
	type plain ScrapingLogEntry
	return joinExtra(plain(l), l.Extra)
}

// GeneralStats are the aggregate counters of GET /estatisticas/geral.
// Pointers distinguish "not sent" from zero.
type GeneralStats struct {
	TotalLocalities *int `json:"total_localidades"`
	TotalStudents   *int `json:"total_alunos"`
	ActiveStudents  *int `json:"alunos_ativos"`
	TotalExams      *int `json:"total_provas"`

	// the backend forwards the raw result of an rpc here, which is not always a number
	AverageScore json.RawMessage `json:"media_geral"`
}

// Average returns media_geral when the backend sent it as a number
func (g GeneralStats) Average() (float64, bool) {
	var f float64
	if len(g.AverageScore) == 0 || bytes.Equal(g.AverageScore, []byte("null")) || json.Unmarshal(g.AverageScore, &f) != nil {
		return 0, false
	}
	return f, true
}

// =============================================================================
// HELPERS
// =============================================================================

// Text accepts a JSON string, number or null and keeps it as a string.
// The locality view mixes numeric and textual sector codes.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("text field: unexpected value %s", data)
		}
		*t = Text(n.String())
		return nil
	}
}

func (t Text) String() string {
	return string(t)
}

// splitExtra returns the object members of data that are not json fields of known.
func splitExtra(data []byte, known any) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	knownJSON, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	var knownKeys map[string]json.RawMessage
	if err := json.Unmarshal(knownJSON, &knownKeys); err != nil {
		return nil, err
	}
	for k := range knownKeys {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// joinExtra marshals known and adds the extra members that are not already present.
func joinExtra(known any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(known)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := all[k]; !ok {
			all[k] = v
		}
	}
	return json.Marshal(all)
}

// ParseID converts a path parameter to a positive integer id
func ParseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
