package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"personen-api/internal/domain"
	"personen-api/internal/repository"
	"personen-api/internal/schema"
)

// PersonHandler serves the CRUD endpoints under /person.
type PersonHandler struct {
	logger       *zap.Logger
	persons      repository.PersonRepository
	legacy       bool
	queryTimeout time.Duration
}

func NewPersonHandler(logger *zap.Logger, persons repository.PersonRepository, legacyStatusCodes bool, queryTimeout time.Duration) *PersonHandler {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	return &PersonHandler{
		logger:       logger,
		persons:      persons,
		legacy:       legacyStatusCodes,
		queryTimeout: queryTimeout,
	}
}

// Create handles POST /person: validate, insert, reply with the generated id.
func (h *PersonHandler) Create(c *gin.Context) {
	person, ok := h.bindPerson(c)
	if !ok {
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	id, err := h.persons.Create(ctx, person)
	if err != nil {
		h.serverError(c, "insert person failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  http.StatusCreated,
		"message": "Person erstellt",
		"id":      id,
	})
}

// List handles GET /person and returns every row.
func (h *PersonHandler) List(c *gin.Context) {
	ctx, cancel := h.queryContext(c)
	defer cancel()

	persons, err := h.persons.List(ctx)
	if err != nil {
		h.serverError(c, "list persons failed", err)
		return
	}
	if persons == nil {
		persons = []domain.Person{}
	}

	c.JSON(http.StatusOK, persons)
}

// Get handles GET /person/:id.
func (h *PersonHandler) Get(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	person, err := h.persons.GetByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrPersonNotFound):
		h.notFound(c)
	case err != nil:
		h.serverError(c, "get person failed", err)
	default:
		c.JSON(http.StatusOK, person)
	}
}

// Update handles PUT /person/:id as a full replacement of all seven fields.
func (h *PersonHandler) Update(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	person, ok := h.bindPerson(c)
	if !ok {
		return
	}
	person.ID = id

	ctx, cancel := h.queryContext(c)
	defer cancel()

	updated, err := h.persons.Update(ctx, person)
	switch {
	case errors.Is(err, repository.ErrPersonNotFound):
		h.notFound(c)
	case err != nil:
		h.serverError(c, "update person failed", err)
	default:
		c.JSON(http.StatusOK, gin.H{
			"message": "Person aktualisiert",
			"person":  updated,
		})
	}
}

// Delete handles DELETE /person/:id.
func (h *PersonHandler) Delete(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	ctx, cancel := h.queryContext(c)
	defer cancel()

	err := h.persons.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrPersonNotFound):
		h.notFound(c)
	case err != nil:
		h.serverError(c, "delete person failed", err)
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Person gelöscht"})
	}
}

// bindPerson validates the raw body against the person schema and decodes it.
// Validation runs on the raw JSON so unknown members and wrong types are
// reported field by field instead of being dropped by struct decoding.
func (h *PersonHandler) bindPerson(c *gin.Context) (domain.Person, bool) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  http.StatusBadRequest,
			"message": "Ungültige Daten",
		})
		return domain.Person{}, false
	}

	if errs := schema.ValidatePerson(raw); errs != nil {
		h.logger.Warn("person payload rejected", zap.Any("errors", errs))
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  http.StatusBadRequest,
			"message": "Ungültige Daten",
			"errors":  errs,
		})
		return domain.Person{}, false
	}

	person, err := decodePerson(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  http.StatusBadRequest,
			"message": "Ungültige Daten",
		})
		return domain.Person{}, false
	}
	return person, true
}

// decodePerson decodes a schema-valid payload. Integer fields go through
// json.Number so a whole float like 10115.0, which the validator accepts,
// decodes the same way it validates.
func decodePerson(raw []byte) (domain.Person, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields struct {
		Vorname       string       `json:"vorname"`
		Nachname      string       `json:"nachname"`
		PLZ           *json.Number `json:"plz"`
		Strasse       *string      `json:"strasse"`
		Ort           *string      `json:"ort"`
		Telefonnummer *json.Number `json:"telefonnummer"`
		Email         string       `json:"email"`
	}
	if err := dec.Decode(&fields); err != nil {
		return domain.Person{}, err
	}

	person := domain.Person{
		Vorname:  fields.Vorname,
		Nachname: fields.Nachname,
		Strasse:  fields.Strasse,
		Ort:      fields.Ort,
		Email:    fields.Email,
	}

	var err error
	if person.PLZ, err = numberToInt64(fields.PLZ); err != nil {
		return domain.Person{}, err
	}
	if person.Telefonnummer, err = numberToInt64(fields.Telefonnummer); err != nil {
		return domain.Person{}, err
	}
	return person, nil
}

func numberToInt64(num *json.Number) (*int64, error) {
	if num == nil {
		return nil, nil
	}
	if v, err := num.Int64(); err == nil {
		return &v, nil
	}
	f, err := num.Float64()
	if err != nil {
		return nil, err
	}
	v := int64(f)
	return &v, nil
}

// bindID parses :id as a positive integer.
func (h *PersonHandler) bindID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  http.StatusBadRequest,
			"message": "Ungültige ID",
		})
		return 0, false
	}
	return id, true
}

func (h *PersonHandler) notFound(c *gin.Context) {
	if h.legacy {
		c.JSON(http.StatusForbidden, gin.H{
			"status":  http.StatusForbidden,
			"message": "URL passt nicht",
		})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{
		"status":  http.StatusNotFound,
		"message": "Person nicht gefunden",
	})
}

// serverError logs the driver error and answers a fixed body; raw datastore
// errors never reach the client.
func (h *PersonHandler) serverError(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"status":  http.StatusInternalServerError,
		"message": "Interner Fehler",
	})
}

func (h *PersonHandler) queryContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.queryTimeout)
}
