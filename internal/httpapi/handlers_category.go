package httpapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/MiantsaNomena/Examen-Final-WEB2/internal/core"
)

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategoriesByUser(r.Context(), userID(r))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cat := core.Category{
		ID:        uuid.NewString(),
		UserID:    userID(r),
		Name:      req.Name,
		CreatedAt: s.now(),
	}
	if err := cat.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.CreateCategory(r.Context(), cat); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cat)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := s.store.GetCategory(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cat, err := s.store.GetCategory(r.Context(), userID(r), mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, r, err)
		return
	}

	cat.Name = req.Name
	if err := cat.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.UpdateCategory(r.Context(), cat); err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	uid, id := userID(r), mux.Vars(r)["id"]

	used, err := s.store.CategoryInUse(r.Context(), uid, id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if used {
		writeError(w, http.StatusBadRequest, "category is referenced by expenses")
		return
	}

	if err := s.store.DeleteCategory(r.Context(), uid, id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
