package rembg

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strconv"

	nhttp "github.com/chaos-io/cutout/util/http"
)

const removePath = "/api/remove"

// ServerRemover 调用已运行的 `rembg s` 服务
type ServerRemover struct {
	baseURL string
	cli     nhttp.IClient
}

func NewServerRemover(baseURL string) *ServerRemover {
	return &ServerRemover{
		baseURL: baseURL,
		// 推理本身没有超时
		cli: nhttp.NewHTTPClientWithTimeout(0),
	}
}

/*
	curl -X POST "$BASE_URL/api/remove" \
	  -F "file=@my_image.png" \
	  -F "model=isnet-general-use" \
	  -F "a=true" -F "af=240" -F "ab=10" -F "ae=10" \
	  -o my_image_out.png
*/
func (s *ServerRemover) Remove(ctx context.Context, input []byte, opts Options) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(input); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}

	for k, v := range formFields(opts) {
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	var output []byte
	reqParam := &nhttp.RequestParam{
		RequestURI: s.baseURL + removePath,
		Method:     "POST",
		Header:     map[string]string{"Content-Type": writer.FormDataContentType()},
		Body:       body,
		Response:   &output,
	}
	if err := s.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	slog.Debug("get the response", "uri", reqParam.RequestURI, "size", len(output))
	return output, nil
}

func formFields(opts Options) map[string]string {
	fields := map[string]string{
		"model": opts.Model,
		"a":     strconv.FormatBool(opts.AlphaMatting),
	}
	if opts.AlphaMatting {
		fields["af"] = strconv.Itoa(opts.ForegroundThreshold)
		fields["ab"] = strconv.Itoa(opts.BackgroundThreshold)
		fields["ae"] = strconv.Itoa(opts.ErodeSize)
	}
	return fields
}
