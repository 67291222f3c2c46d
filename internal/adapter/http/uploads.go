package http

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// UploadResponse carries the reference of a stored file.
type UploadResponse struct {
	URL string `json:"url" doc:"Reference to store on branches, rooms, contracts or invoices"`
}

type fileInput struct {
	RawBody multipart.Form
}

// formFile returns the name and content of the "file" part.
func formFile(form *multipart.Form) (string, multipart.File, error) {
	files := form.File["file"]
	if len(files) == 0 {
		return "", nil, huma.Error400BadRequest(`multipart field "file" is required`)
	}
	f, err := files[0].Open()
	if err != nil {
		return "", nil, huma.Error400BadRequest("reading uploaded file", err)
	}
	return files[0].Filename, f, nil
}

// readFormFile returns the name and bytes of the "file" part.
func readFormFile(form *multipart.Form) (string, []byte, error) {
	name, f, err := formFile(form)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, huma.Error400BadRequest("reading uploaded file", err)
	}
	return name, data, nil
}

func registerUploads(api huma.API, s Services) {
	huma.Register(api, secured(huma.Operation{
		OperationID:   "upload-file",
		Method:        http.MethodPost,
		Path:          "/uploads",
		Summary:       "Store an image or scan and return its reference",
		Tags:          []string{"Uploads"},
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  maxUploadBytes,
	}), func(ctx context.Context, in *fileInput) (*itemOutput[UploadResponse], error) {
		if _, err := caller(ctx); err != nil {
			return nil, err
		}
		name, f, err := formFile(&in.RawBody)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		url, err := s.Files.Store(ctx, name, f)
		if err != nil {
			return nil, toHumaError(fmt.Errorf("storing upload: %w", err))
		}
		return &itemOutput[UploadResponse]{Body: UploadResponse{URL: url}}, nil
	})
}
