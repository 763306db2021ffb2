// Package closure drives the portal's baixa form for a single service order:
// search, field population, submit, confirmation, and verification, returning
// a structured outcome for every path.
package closure

import (
	"context"
	"time"

	"github.com/caesb-automation/baixa/internal/session"
)

// System defines the public contract for closure operations. The returned
// error is non-nil only for unexpected runtime faults; the outcome is
// populated either way.
type System interface {
	Close(ctx context.Context, bundle *session.Bundle, orderID string) (Outcome, error)
}

// RadioGroup locates one option inside a JSF radio-button group by position.
type RadioGroup struct {
	ID    string
	Index int
	Label string
}

// FormFields names the widgets the workflow drives. The radio group ids are
// JSF-generated and drift between portal deployments, so they are part of
// configuration rather than constants.
type FormFields struct {
	SearchInput   string
	SearchButton  string
	ResultsForm   string
	ErrorMarker   string
	ErrorMessages string

	Refacture RadioGroup
	Executed  RadioGroup
	Leak      RadioGroup

	StartDateInput string
	EndDateInput   string
	DiagnosisArea  string
	RemedyArea     string

	SaveButton    string
	ConfirmDialog string
	ConfirmButton string

	ServerErrorIcon string
	ServerErrorText string
	ServerErrorCode string
}

// DefaultFormFields returns the field set of the current GCOM deployment.
func DefaultFormFields() FormFields {
	return FormFields{
		SearchInput:   `#formPesquisa\:inptOs`,
		SearchButton:  `#formPesquisa\:pesquisarOrdemServico`,
		ResultsForm:   `#form1`,
		ErrorMarker:   `.ui-linha-form-messages`,
		ErrorMessages: `.ui-linha-form-messages, .ui-messages-error`,

		Refacture: RadioGroup{ID: "form1:j_idt426", Index: 1, Label: "refaturar conta: não"},
		Executed:  RadioGroup{ID: "form1:j_idt615", Index: 0, Label: "executado: sim"},
		Leak:      RadioGroup{ID: "form1:j_idt604", Index: 1, Label: "vazamento ou extravasamento: não"},

		StartDateInput: `#form1\:dataInicioExecucao_input`,
		EndDateInput:   `#form1\:dataFimExecucao_input`,
		DiagnosisArea:  `#form1\:diagnosticoBaixa`,
		RemedyArea:     `#form1\:providenciaBaixa`,

		SaveButton:    `#form1\:j_idt1115`,
		ConfirmDialog: `#formValidacaolancamento`,
		ConfirmButton: `#formValidacaolancamento button:has-text("Confirmar")`,

		ServerErrorIcon: `#icone`,
		ServerErrorText: `#msg`,
		ServerErrorCode: `#msg b`,
	}
}

// Config holds the endpoints, timing bounds, and field set for the workflow.
type Config struct {
	ClosureURL string
	ControlURL string
	// LoginPath marks the login flow; landing on it means the session expired.
	LoginPath string

	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
	ActionTimeout     time.Duration

	// SearchRetries re-attempts follow the initial search timeout, spaced by
	// SearchRetryDelay.
	SearchRetries    int
	SearchRetryDelay time.Duration

	// Location is the portal's local time zone, used for execution stamps.
	Location *time.Location

	Fields FormFields
}
