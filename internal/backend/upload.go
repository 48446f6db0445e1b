package backend

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"evaluation-console/internal/domain"
	"github.com/pkg/errors"
)

// UploadCourseImage replaces a course image. The backend only parses
// multipart bodies on POST, so the update is tunnelled with a method override.
func (c *Client) UploadCourseImage(ctx context.Context, course, filename string, image io.Reader) (domain.Course, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return domain.Course{}, errors.Wrap(err, "create image part")
	}
	if _, err := io.Copy(part, image); err != nil {
		return domain.Course{}, errors.Wrap(err, "copy image")
	}
	if err := mw.Close(); err != nil {
		return domain.Course{}, errors.Wrap(err, "close multipart")
	}

	header := http.Header{}
	header.Set("X-HTTP-Method-Override", http.MethodPut)

	var env dataEnvelope[domain.Course]
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        c.endpoint("courses", course),
		body:        &buf,
		contentType: mw.FormDataContentType(),
		header:      header,
	}, &env)
	if err != nil {
		return domain.Course{}, errors.Wrapf(err, "upload image of course %s", course)
	}
	return env.Data, nil
}
