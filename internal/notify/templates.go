package notify

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/caesb-automation/baixa/internal/closure"
)

const stampLayout = "02/01/2006 15:04:05"

var templates = template.Must(template.New("notify").Funcs(template.FuncMap{
	"stamp": func(t time.Time) string { return t.Format(stampLayout) },
	"join":  func(parts []string) string { return strings.Join(parts, ", ") },
}).Parse(`
{{define "success"}}<html><body>
<h2>Baixa finalizada com sucesso</h2>
<p><strong>Número da OS:</strong> {{.OrderID}}</p>
<p><strong>Início:</strong> {{stamp .StartedAt}}</p>
<p><strong>Fim:</strong> {{stamp .EndedAt}}</p>
<p>Este email foi enviado automaticamente pelo sistema de automação de baixa.</p>
</body></html>{{end}}

{{define "error"}}<html><body>
<h2>Erro na execução da baixa</h2>
<p>O processo foi interrompido e requer intervenção manual.</p>
<p><strong>Número da OS:</strong> {{if .OrderID}}{{.OrderID}}{{else}}N/A{{end}}</p>
<p><strong>Início da execução:</strong> {{stamp .StartedAt}}</p>
<p><strong>Hora do erro:</strong> {{stamp .Now}}</p>
<p><strong>Detalhes:</strong></p>
<pre>{{.Message}}</pre>
<p>Este email foi enviado automaticamente pelo sistema de automação de baixa.</p>
</body></html>{{end}}

{{define "summary"}}<html><body>
<h2>Resumo da execução</h2>
<p><strong>Total de OSs processadas:</strong> {{len .Outcomes}}</p>
<p><strong>Sucessos:</strong> {{.Succeeded}}</p>
<p><strong>Erros:</strong> {{.Failed}}</p>
<p><strong>Início:</strong> {{stamp .StartedAt}}</p>
<p><strong>Fim:</strong> {{stamp .EndedAt}}</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>OS</th><th>Status</th><th>Mensagem</th></tr>
{{range .Outcomes}}<tr>
<td>{{.OrderID}}</td>
<td>{{if .Succeeded}}SUCESSO{{else}}ERRO{{end}}</td>
<td>{{join .Messages}}</td>
</tr>{{end}}
</table>
<p>Este email foi enviado automaticamente pelo sistema de automação de baixa.</p>
</body></html>{{end}}
`))

type successData struct {
	OrderID   string
	StartedAt time.Time
	EndedAt   time.Time
}

type errorData struct {
	OrderID   string
	Message   string
	StartedAt time.Time
	Now       time.Time
}

type summaryData struct {
	Outcomes  []closure.Outcome
	Succeeded int
	Failed    int
	StartedAt time.Time
	EndedAt   time.Time
}

func renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render %s notification: %w", name, err)
	}
	return b.String(), nil
}

func summarize(outcomes []closure.Outcome) (succeeded, failed int) {
	for _, outcome := range outcomes {
		if outcome.Succeeded {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
