package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in the shared envelope.
// Error bodies become {v, success:false, error, code, message, details};
// everything else becomes {v, success:true, data}.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case response.Envelope:
		return body, nil
	case *APIError:
		return response.Fail(errors.Code(body.Code), body.Message, body.Details), nil
	case *huma.ErrorModel:
		var details any
		if len(body.Errors) > 0 {
			details = body.Errors
		}
		return response.Fail(statusToCode(body.Status), body.Detail, details), nil
	default:
		return response.Ok(v), nil
	}
}
