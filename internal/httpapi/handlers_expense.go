package httpapi

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/core"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/receipts"
	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/storage"
)

// expenseForm carries the writable expense fields. Pointers distinguish an
// omitted field from an explicit empty value, which clears date fields.
type expenseForm struct {
	Amount        *core.Money `json:"amount"`
	Type          *string     `json:"type"`
	Date          *string     `json:"date"`
	StartDate     *string     `json:"startDate"`
	EndDate       *string     `json:"endDate"`
	CategoryID    *string     `json:"categoryId"`
	Description   *string     `json:"description"`
	RemoveReceipt bool        `json:"removeReceipt"`
}

// decodeExpenseForm accepts either a JSON body or multipart form data; only
// the latter can carry a receipt file. The caller must close the returned
// file when it is non-nil.
func decodeExpenseForm(r *http.Request) (expenseForm, multipart.File, *multipart.FileHeader, error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if contentType != "multipart/form-data" {
		var form expenseForm
		if err := decodeJSON(r, &form); err != nil {
			return expenseForm{}, nil, nil, errors.New("invalid request body")
		}
		return form, nil, nil, nil
	}

	if err := r.ParseMultipartForm(receipts.MaxSize + 1<<20); err != nil {
		return expenseForm{}, nil, nil, errors.New("invalid multipart form")
	}

	var form expenseForm
	values := r.MultipartForm.Value
	if v, ok := formValue(values, "amount"); ok {
		amount, err := core.ParseAmount(v)
		if err != nil {
			return expenseForm{}, nil, nil, err
		}
		form.Amount = &amount
	}
	form.Type = formString(values, "type")
	form.Date = formString(values, "date")
	form.StartDate = formString(values, "startDate")
	form.EndDate = formString(values, "endDate")
	form.CategoryID = formString(values, "categoryId")
	form.Description = formString(values, "description")
	if v, ok := formValue(values, "removeReceipt"); ok {
		form.RemoveReceipt = v == "true" || v == "1"
	}

	file, header, err := r.FormFile("receipt")
	if errors.Is(err, http.ErrMissingFile) {
		return form, nil, nil, nil
	}
	if err != nil {
		return expenseForm{}, nil, nil, errors.New("invalid receipt upload")
	}
	return form, file, header, nil
}

func formValue(values map[string][]string, key string) (string, bool) {
	if vs, ok := values[key]; ok && len(vs) > 0 {
		return vs[0], true
	}
	return "", false
}

func formString(values map[string][]string, key string) *string {
	if v, ok := formValue(values, key); ok {
		return &v
	}
	return nil
}

// apply copies the present fields onto the expense. An explicitly empty date
// string clears that date, which is how a recurring expense drops its end.
func (f expenseForm) apply(exp *core.Expense) error {
	if f.Amount != nil {
		exp.Amount = *f.Amount
	}
	if f.Type != nil {
		exp.Type = core.ExpenseType(*f.Type)
		// Changing the type clears the other kind's dates, so a one-time
		// expense can become recurring (and back) in a single request.
		switch exp.Type {
		case core.OneTime:
			exp.StartDate, exp.EndDate = core.Date{}, core.Date{}
		case core.Recurring:
			exp.Date = core.Date{}
		}
	}
	if f.CategoryID != nil {
		exp.CategoryID = *f.CategoryID
	}
	if f.Description != nil {
		exp.Description = *f.Description
	}

	for _, field := range []struct {
		value *string
		dst   *core.Date
	}{
		{f.Date, &exp.Date},
		{f.StartDate, &exp.StartDate},
		{f.EndDate, &exp.EndDate},
	} {
		if field.value == nil {
			continue
		}
		if *field.value == "" {
			*field.dst = core.Date{}
			continue
		}
		parsed, err := core.ParseDate(*field.value)
		if err != nil {
			return err
		}
		*field.dst = parsed
	}
	return nil
}

// checkCategory verifies the category exists and belongs to the caller.
func (s *Server) checkCategory(r *http.Request, categoryID string) error {
	if categoryID == "" {
		return errors.New("categoryId is required")
	}
	if _, err := s.store.GetCategory(r.Context(), userID(r), categoryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return errors.New("invalid category")
		}
		return err
	}
	return nil
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	form, file, header, err := decodeExpenseForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if file != nil {
		defer file.Close()
	}

	exp := core.Expense{
		ID:        uuid.NewString(),
		UserID:    userID(r),
		CreatedAt: s.now(),
	}
	if err := form.apply(&exp); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.checkCategory(r, exp.CategoryID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := exp.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if file != nil {
		receipt, err := s.saveReceipt(file, header)
		if err != nil {
			writeReceiptError(w, err)
			return
		}
		exp.Receipt = receipt
	}

	if err := s.expenses.Create(r.Context(), exp); err != nil {
		if exp.Receipt != nil {
			s.receipts.Remove(exp.Receipt.Filename)
		}
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, exp)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.store.ListExpensesByUser(r.Context(), userID(r))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	filtered, err := filterExpenses(expenses, r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, filtered)
}

// filterExpenses narrows the list by type, category and date range. One-time
// expenses match the range at day precision; recurring ones match when their
// month window overlaps the range's months.
func filterExpenses(expenses []core.Expense, query map[string][]string) ([]core.Expense, error) {
	typ, _ := formValue(query, "type")
	categoryID, _ := formValue(query, "categoryId")
	start, _ := formValue(query, "start")
	end, _ := formValue(query, "end")

	if typ != "" && !core.ExpenseType(typ).Valid() {
		return nil, core.ErrInvalidType
	}

	var startDate, endDate core.Date
	var err error
	if start != "" {
		if startDate, err = core.ParseDate(start); err != nil {
			return nil, err
		}
	}
	if end != "" {
		if endDate, err = core.ParseDate(end); err != nil {
			return nil, err
		}
	}

	filtered := []core.Expense{}
	for _, exp := range expenses {
		if typ != "" && exp.Type != core.ExpenseType(typ) {
			continue
		}
		if categoryID != "" && exp.CategoryID != categoryID {
			continue
		}
		if !expenseInRange(exp, startDate, endDate) {
			continue
		}
		filtered = append(filtered, exp)
	}
	return filtered, nil
}

func expenseInRange(exp core.Expense, start, end core.Date) bool {
	if start.IsZero() && end.IsZero() {
		return true
	}
	if exp.Type == core.OneTime {
		if !start.IsZero() && exp.Date.Time.Before(start.Time) {
			return false
		}
		if !end.IsZero() && exp.Date.Time.After(end.Time) {
			return false
		}
		return true
	}
	if !start.IsZero() && !exp.EndDate.IsZero() &&
		core.PeriodOf(exp.EndDate).Before(core.PeriodOf(start)) {
		return false
	}
	if !end.IsZero() && core.PeriodOf(exp.StartDate).After(core.PeriodOf(end)) {
		return false
	}
	return true
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	exp, err := s.store.GetExpense(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	exp, err := s.store.GetExpense(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	form, file, header, err := decodeExpenseForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if file != nil {
		defer file.Close()
	}

	if err := form.apply(&exp); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.checkCategory(r, exp.CategoryID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := exp.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var removed *core.Receipt
	switch {
	case file != nil:
		receipt, err := s.saveReceipt(file, header)
		if err != nil {
			writeReceiptError(w, err)
			return
		}
		removed = exp.Receipt
		exp.Receipt = receipt
	case form.RemoveReceipt:
		removed = exp.Receipt
		exp.Receipt = nil
	}

	if err := s.expenses.Update(r.Context(), exp, removed); err != nil {
		if file != nil && exp.Receipt != nil {
			s.receipts.Remove(exp.Receipt.Filename)
		}
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.Delete(r.Context(), userID(r), mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDownloadReceipt streams the receipt file attached to an expense.
func (s *Server) handleDownloadReceipt(w http.ResponseWriter, r *http.Request) {
	exp, err := s.store.GetExpense(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if exp.Receipt == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	path, err := s.receipts.Path(exp.Receipt.Filename)
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	w.Header().Set("Content-Type", exp.Receipt.MimeType)
	w.Header().Set("Content-Disposition",
		`inline; filename="`+strings.ReplaceAll(exp.Receipt.OriginalName, `"`, "")+`"`)
	http.ServeFile(w, r, path)
}

func (s *Server) saveReceipt(file multipart.File, header *multipart.FileHeader) (*core.Receipt, error) {
	mimeType, _, _ := mime.ParseMediaType(header.Header.Get("Content-Type"))
	return s.receipts.Save(file, header.Filename, mimeType, header.Size)
}

func writeReceiptError(w http.ResponseWriter, err error) {
	if errors.Is(err, receipts.ErrInvalidType) || errors.Is(err, receipts.ErrTooLarge) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "internal server error")
}
