// Copyright (c) 2026 PIMS Archive. All rights reserved.
// Author: PIMS archive team

package entry

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/pims-archive/pims/internal/platform/apperr"
	"github.com/pims-archive/pims/internal/platform/constants"
	requestutil "github.com/pims-archive/pims/internal/platform/request"
	"github.com/pims-archive/pims/internal/platform/validate"
	"github.com/pims-archive/pims/pkg/convert"
	"github.com/pims-archive/pims/pkg/query"
)

// payload is a write body reduced to string fields plus the two structured lists.
// Form bodies carry topics and translations as JSON-encoded strings; JSON bodies
// carry them as arrays. Both end up here.
type payload struct {
	values       map[string]string
	topics       []int
	translations []Translation
}

func (p *payload) get(name string) string {
	return strings.TrimSpace(p.values[name])
}

/*
readPayload decodes a write request body.

Accepted media types: application/x-www-form-urlencoded, multipart/form-data
and application/json. Bodies above [constants.MaxFormBytes] are rejected.

Returns:
  - *payload: The decoded fields
  - error: VALIDATION_ERROR for malformed bodies or topic/translation lists
*/
func readPayload(writer http.ResponseWriter, request *http.Request) (*payload, error) {
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxFormBytes)

	if requestutil.MediaType(request) == "application/json" {
		return readJSONPayload(request)
	}

	var err error
	if requestutil.MediaType(request) == "multipart/form-data" {
		err = request.ParseMultipartForm(constants.MaxFormBytes)
	} else {
		err = request.ParseForm()
	}
	if isTooLarge(err) {
		return nil, errTooLarge
	}
	if err != nil {
		return nil, validate.ErrInvalidForm
	}

	p := &payload{values: make(map[string]string, len(request.PostForm))}
	for key := range request.PostForm {
		p.values[key] = request.PostForm.Get(key)
	}

	if p.topics, err = decodeTopics([]byte(p.get(FieldTopics))); err != nil {
		return nil, err
	}
	if p.translations, err = decodeTranslations([]byte(p.get(FieldTranslations))); err != nil {
		return nil, err
	}
	return p, nil
}

func readJSONPayload(request *http.Request) (*payload, error) {
	var raw map[string]json.RawMessage
	if err := requestutil.DecodeJSON(request, &raw); err != nil {
		return nil, err
	}

	p := &payload{values: make(map[string]string, len(raw))}
	var err error

	for key, value := range raw {
		switch key {
		case FieldTopics:
			p.topics, err = decodeTopics(unwrapJSONString(value))
		case FieldTranslations:
			p.translations, err = decodeTranslations(unwrapJSONString(value))
		default:
			p.values[key] = scalarString(value)
		}
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// decodeTopics reads a JSON array of topic ids. Blank input and the literal
// "undefined" some browser forms send mean no topics.
func decodeTopics(raw []byte) ([]int, error) {
	if isEmptyList(raw) {
		return nil, nil
	}
	var ids []int
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, validate.RequiredError(FieldTopics, "Must be a JSON array of topic ids")
	}
	return ids, nil
}

func decodeTranslations(raw []byte) ([]Translation, error) {
	if isEmptyList(raw) {
		return nil, nil
	}
	var translations []Translation
	if err := json.Unmarshal(raw, &translations); err != nil {
		return nil, validate.RequiredError(FieldTranslations, "Must be a JSON array of translations")
	}
	return translations, nil
}

func isEmptyList(raw []byte) bool {
	trimmed := string(bytes.TrimSpace(raw))
	return trimmed == "" || trimmed == "undefined" || trimmed == "null"
}

// unwrapJSONString returns the content of a JSON string, or raw unchanged.
// It lets JSON clients send topics either as [1,2] or as "[1,2]".
func unwrapJSONString(raw json.RawMessage) []byte {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []byte(s)
	}
	return raw
}

// scalarString renders a JSON scalar the way a form would have sent it.
func scalarString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}

// # Mapping

// fields applies the coercion rules shared by admin writes and contributions.
func (p *payload) fields() (Fields, error) {
	date, err := convert.ToDate(p.get(FieldDate))
	if err != nil {
		return Fields{}, validate.RequiredError(FieldDate, "Unrecognized date: "+p.get(FieldDate))
	}

	return Fields{
		Title:          p.get(FieldTitle),
		Date:           date,
		OrganizationID: convert.ToOptionalInt(p.get(FieldOrganizationID)),
		LocationID:     convert.ToOptionalInt(p.get(FieldLocationID)),
		Summary:        convert.ToOptionalString(p.get(FieldSummary)),
		SourceLink:     convert.ToOptionalString(p.get(FieldSourceLink)),
		HasPhotos:      convert.ToFlag(p.get(FieldHasPhotos)),
		Type:           convert.ToOptionalString(p.get(FieldType)),
	}, nil
}

func (p *payload) input() (*Input, error) {
	fields, err := p.fields()
	if err != nil {
		return nil, err
	}
	return &Input{Fields: fields, TopicIDs: p.topics, Translations: p.translations}, nil
}

/*
contribution maps the public form.

The organization may arrive as an id, as a name in organization_name, or as a
name typed into organization_id; the location as an id or a "City, Province"
label.
*/
func (p *payload) contribution() (*Contribution, error) {
	fields, err := p.fields()
	if err != nil {
		return nil, err
	}

	c := &Contribution{
		Fields:           fields,
		OrganizationName: p.get(FieldOrganizationName),
		LocationLabel:    p.get(FieldLocation),
		Tags:             query.UniqueFold(p.get(FieldTags)),
	}

	if raw := p.get(FieldOrganizationID); c.OrganizationID == nil && raw != "" && c.OrganizationName == "" {
		if _, numErr := strconv.Atoi(raw); numErr != nil {
			c.OrganizationName = raw
		}
	}

	if title, summary := p.get(FieldTitleFR), p.get(FieldSummaryFR); title != "" || summary != "" {
		c.Translation = &Translation{LanguageCode: ContributionLanguage, Title: title, Summary: summary}
	}

	return c, nil
}

// isTooLarge reports whether err came from [http.MaxBytesReader].
func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// errTooLarge is returned for bodies above the form limit.
var errTooLarge = &apperr.AppError{
	Code:       apperr.CodeValidation,
	Message:    "Request body too large",
	HTTPStatus: http.StatusRequestEntityTooLarge,
}
