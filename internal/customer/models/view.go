package models

import (
	"fmt"

	id "github.com/pk-mender/desafiojr/pkg/domain"
)

// Notice is a user-visible message, rendered by the browser as a toast.
type Notice struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

const (
	NoticeSuccess = "success"
	NoticeError   = "error"
	NoticeInfo    = "info"
)

// User-facing messages.
const (
	MsgSaved         = "Dados salvos com sucesso!"
	MsgSaveFailed    = "Erro ao salvar dados."
	MsgDeleted       = "Excluído com sucesso!"
	MsgDeleteFailed  = "Erro ao excluir cliente."
	MsgListFailed    = "Erro ao carregar lista."
	MsgEmptyList     = "Nenhum cliente encontrado."
	MsgConfirmDelete = "Excluir este cliente?"
	MsgSaveAnother   = "Deseja cadastrar outro cliente?"
	MsgPostcodeMiss  = "CEP não encontrado"
	MsgNotFound      = "Cliente não encontrado."
	MsgDuplicateCPF  = "Já existe um cliente cadastrado com este CPF."
	MsgInvalidFields = "Preencha os campos corretamente!"
	MsgLoadFailed    = "Erro ao carregar cliente."
	MsgFormExpired   = "Formulário expirado. Abra o cadastro novamente."
	MsgSaving        = "Aguarde, salvando..."
	MsgNothingSaved  = "Nenhum cadastro salvo neste formulário."
	MsgUnsaved       = "Existem alterações não salvas. Deseja sair?"
)

// ListResult is what the list flow produced for one query.
type ListResult struct {
	Query Query
	Page  Page
}

// ListView is the list page view model.
type ListView struct {
	Query          Query             `json:"query"`
	Rows           []Row             `json:"rows"`
	EmptyMessage   string            `json:"empty_message,omitempty"`
	Pagination     Pagination        `json:"pagination"`
	SortIndicators map[string]string `json:"sort_indicators"`
	Notice         *Notice           `json:"notice,omitempty"`
}

// Row is one table line as displayed.
type Row struct {
	ID        id.CustomerID `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	CPF       string        `json:"cpf"`
	BirthDate string        `json:"birth_date"`
	Phone     string        `json:"phone"`
}

type Pagination struct {
	Page        int    `json:"page"`
	TotalPages  int    `json:"total_pages"`
	Total       int    `json:"total"`
	Label       string `json:"label"`
	HasPrevious bool   `json:"has_previous"`
	HasNext     bool   `json:"has_next"`
}

// NewListView renders a list result.
func NewListView(r ListResult) ListView {
	rows := make([]Row, 0, len(r.Page.Records))
	for _, c := range r.Page.Records {
		rows = append(rows, RowFromCustomer(c))
	}
	total := r.Page.Total
	if !r.Page.TotalKnown {
		total = len(rows)
	}
	v := ListView{
		Query:          r.Query,
		Rows:           rows,
		Pagination:     NewPagination(r.Query, total),
		SortIndicators: r.Query.SortIndicators(),
	}
	if !r.Page.TotalKnown {
		// without a total there is no way to know a next page exists
		v.Pagination.HasNext = false
	}
	if len(rows) == 0 {
		v.EmptyMessage = MsgEmptyList
	}
	return v
}

// RowFromCustomer formats a record for the table.
func RowFromCustomer(c Customer) Row {
	email := c.Email
	if email == "" {
		email = "-"
	}
	return Row{
		ID:        c.ID,
		Name:      c.Name,
		Email:     email,
		CPF:       c.CPF,
		BirthDate: id.FormatDisplayDate(c.BirthDate),
		Phone:     c.Phone,
	}
}

func NewPagination(q Query, total int) Pagination {
	pages := q.TotalPages(total)
	return Pagination{
		Page:        q.Page,
		TotalPages:  pages,
		Total:       total,
		Label:       fmt.Sprintf("Página %d de %d (%d registros)", q.Page, pages, total),
		HasPrevious: q.HasPrevious(),
		HasNext:     q.HasNext(total),
	}
}

// FormView is the form page view model.
type FormView struct {
	SessionID      string  `json:"session_id"`
	CustomerID     string  `json:"customer_id,omitempty"`
	Heading        string  `json:"heading"`
	ActionLabel    string  `json:"action_label"`
	ActionDisabled bool    `json:"action_disabled"`
	State          string  `json:"state"`
	Values         Form    `json:"values"`
	WarnOnLeave    bool    `json:"warn_on_leave"`
	Focus          string  `json:"focus,omitempty"`
	Notice         *Notice `json:"notice,omitempty"`
}

// NewFormView renders a session.
func NewFormView(s *FormSession) FormView {
	return FormView{
		SessionID:      s.ID.String(),
		CustomerID:     s.CustomerID.String(),
		Heading:        s.Heading(),
		ActionLabel:    s.ActionLabel(),
		ActionDisabled: s.Busy,
		State:          string(s.State),
		Values:         s.Form,
		WarnOnLeave:    s.WarnOnLeave(),
		Focus:          s.Focus,
	}
}

// SubmitResult reports a successful save. In create mode the user is asked
// whether to register another customer; edit mode goes straight back to the list.
type SubmitResult struct {
	Customer      Customer
	Created       bool
	AskForAnother bool
}
