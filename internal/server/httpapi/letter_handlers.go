package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// letterID returns the {id} path parameter if it is a well-formed UUID.
func letterID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid letter id")
		return "", false
	}
	return id, true
}

func (s *Server) listLetters(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	letters, err := s.letters.List(r.Context(), userID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	out := make([]letterResponse, 0, len(letters))
	for _, l := range letters {
		out = append(out, newLetterResponse(l))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createLetter(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())
	var req letterRequest
	if !s.decode(w, r, &req) {
		return
	}
	letter, err := s.letters.Create(r.Context(), userID, req.input())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newLetterResponse(letter))
}

func (s *Server) getLetter(w http.ResponseWriter, r *http.Request) {
	id, ok := letterID(w, r)
	if !ok {
		return
	}
	userID, _ := userIDFromContext(r.Context())
	letter, err := s.letters.Get(r.Context(), userID, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLetterResponse(letter))
}

func (s *Server) updateLetter(w http.ResponseWriter, r *http.Request) {
	id, ok := letterID(w, r)
	if !ok {
		return
	}
	var req letterRequest
	if !s.decode(w, r, &req) {
		return
	}
	userID, _ := userIDFromContext(r.Context())
	letter, err := s.letters.Update(r.Context(), userID, id, req.input())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLetterResponse(letter))
}

func (s *Server) deleteLetter(w http.ResponseWriter, r *http.Request) {
	id, ok := letterID(w, r)
	if !ok {
		return
	}
	userID, _ := userIDFromContext(r.Context())
	if err := s.letters.Delete(r.Context(), userID, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Letter deleted"})
}

func (s *Server) finalizeLetter(w http.ResponseWriter, r *http.Request) {
	id, ok := letterID(w, r)
	if !ok {
		return
	}
	userID, _ := userIDFromContext(r.Context())
	letter, err := s.letters.Finalize(r.Context(), userID, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLetterResponse(letter))
}

func (s *Server) attachmentUploadURL(w http.ResponseWriter, r *http.Request) {
	id, ok := letterID(w, r)
	if !ok {
		return
	}
	var req attachmentRequest
	if !s.decode(w, r, &req) {
		return
	}
	userID, _ := userIDFromContext(r.Context())
	key, url, err := s.letters.AttachmentUploadURL(r.Context(), userID, id, req.ContentType)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attachmentResponse{Key: key, UploadURL: url})
}

// unlockLetter is the family-facing endpoint; it authenticates with the
// owner's family key instead of a bearer token.
func (s *Server) unlockLetter(w http.ResponseWriter, r *http.Request) {
	id, ok := letterID(w, r)
	if !ok {
		return
	}
	var req unlockRequest
	if !s.decode(w, r, &req) {
		return
	}
	out, err := s.letters.Unlock(r.Context(), id, req.FamilyKey)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, unlockResponse{
		Letter:        newLetterResponse(out.Letter),
		OwnerName:     out.OwnerName,
		AttachmentURL: out.AttachmentURL,
	})
}
