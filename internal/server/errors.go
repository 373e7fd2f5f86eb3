package server

import (
	"errors"
	"net/http"

	"github.com/emitia/nfse-backoffice/internal/company"
	"github.com/emitia/nfse-backoffice/internal/discrimination"
	documentdomain "github.com/emitia/nfse-backoffice/internal/document/domain"
	gatewaydomain "github.com/emitia/nfse-backoffice/internal/gateway/domain"
	"github.com/emitia/nfse-backoffice/internal/modelo"
	"github.com/emitia/nfse-backoffice/internal/partner"
	"github.com/emitia/nfse-backoffice/internal/tomador"
	wizarddomain "github.com/emitia/nfse-backoffice/internal/wizard/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{Code: code, Message: "invalid value"},
			},
		}
	}

	switch {
	case errors.Is(err, gatewaydomain.ErrSessionExpired):
		return http.StatusUnauthorized, errorPayload{
			Type:    "session_expired",
			Message: "provider session expired, sign in again",
		}
	case errors.Is(err, gatewaydomain.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "operation not allowed by the provider",
		}
	case errors.Is(err, wizarddomain.ErrVersionConflict):
		return http.StatusConflict, errorPayload{
			Type:    "version_conflict",
			Message: "the draft changed since this screen loaded",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, gatewaydomain.ErrInvalidPayload):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "invalid_payload",
			Message: "the provider rejected the payload",
		}
	case errors.Is(err, documentdomain.ErrDocumentTooLarge):
		return http.StatusRequestEntityTooLarge, errorPayload{
			Type:    "document_too_large",
			Message: "document exceeds the size limit",
		}
	case errors.Is(err, documentdomain.ErrDocumentType):
		return http.StatusUnsupportedMediaType, errorPayload{
			Type:    "document_type_not_allowed",
			Message: "document type not allowed",
		}
	case errors.Is(err, gatewaydomain.ErrConnectivity):
		return http.StatusBadGateway, errorPayload{
			Type:    "provider_unreachable",
			Message: "could not reach the invoicing provider",
		}
	case errors.Is(err, gatewaydomain.ErrProvider):
		return http.StatusBadGateway, errorPayload{
			Type:    "provider_error",
			Message: "the invoicing provider failed",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

// isValidationError collects the user-correctable input errors of
// every module; they all surface as 400s with their code.
func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, wizarddomain.ErrUnknownEvent),
		errors.Is(err, wizarddomain.ErrStepIncomplete),
		errors.Is(err, wizarddomain.ErrSocioDesconhecido),
		errors.Is(err, wizarddomain.ErrSocioNaoSelecionado),
		errors.Is(err, wizarddomain.ErrModoInvalido),
		errors.Is(err, wizarddomain.ErrModeloDesconhecido),
		errors.Is(err, wizarddomain.ErrCompetenciaInvalida),
		errors.Is(err, wizarddomain.ErrEmpresaObrigatoria),
		errors.Is(err, wizarddomain.ErrTomadorObrigatorio),
		errors.Is(err, wizarddomain.ErrModeloObrigatorio),
		errors.Is(err, wizarddomain.ErrAvulsoIncompleto),
		errors.Is(err, wizarddomain.ErrSemSocios),
		errors.Is(err, wizarddomain.ErrValorTotalInvalido),
		errors.Is(err, wizarddomain.ErrDiscriminacaoVazia),
		errors.Is(err, wizarddomain.ErrCodigoServicoVazio),
		errors.Is(err, wizarddomain.ErrCNAEVazio):
		return true
	case errors.Is(err, discrimination.ErrMultipleLoopRegions):
		return true
	case errors.Is(err, company.ErrCNPJInvalido),
		errors.Is(err, company.ErrRazaoSocialVazia),
		errors.Is(err, company.ErrAliquotaForaDaFaixa),
		errors.Is(err, partner.ErrCPFInvalido),
		errors.Is(err, partner.ErrNomeVazio),
		errors.Is(err, partner.ErrParticipacaoForaDaFaixa),
		errors.Is(err, tomador.ErrDocumentoInvalido),
		errors.Is(err, tomador.ErrNomeVazio),
		errors.Is(err, modelo.ErrTituloVazio),
		errors.Is(err, modelo.ErrTextoVazio):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, wizarddomain.ErrDraftNotFound),
		errors.Is(err, documentdomain.ErrDocumentNotFound),
		errors.Is(err, gatewaydomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// classifyErrorForLog feeds the request logger a (type, code) pair
// without rendering anything to the client.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "error", payload.Type
	case status >= http.StatusBadRequest:
		return "warn", payload.Type
	default:
		return "info", payload.Type
	}
}
