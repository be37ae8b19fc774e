package awslambda

import (
	"encoding/base64"
	"errors"
	"fmt"

	"awsinfra/internal/mcp"
)

type functionCode struct {
	ZipFile         string `json:"zip_file"`
	S3Bucket        string `json:"s3_bucket"`
	S3Key           string `json:"s3_key"`
	S3ObjectVersion string `json:"s3_object_version"`
	ImageURI        string `json:"image_uri"`
}

type createFunctionRequest struct {
	FunctionName string            `json:"function_name" valid:"required~function_name is required"`
	Runtime      string            `json:"runtime"`
	Role         string            `json:"role" valid:"required~role is required"`
	Handler      string            `json:"handler"`
	Code         *functionCode     `json:"code" valid:"-"`
	Description  string            `json:"description"`
	Timeout      int32             `json:"timeout"`
	MemorySize   int32             `json:"memory_size"`
	Environment  map[string]string `json:"environment" valid:"-"`
	Tags         map[string]string `json:"tags" valid:"-"`

	zip []byte
}

func newCreateFunctionRequest() createFunctionRequest {
	return createFunctionRequest{Timeout: 30, MemorySize: 128}
}

func (r *createFunctionRequest) Validate() error {
	if err := mcp.ValidateStruct(r); err != nil {
		return err
	}
	if r.Timeout < 1 || r.Timeout > 900 {
		return fmt.Errorf("timeout must be between 1 and 900 seconds, got %d", r.Timeout)
	}
	if r.MemorySize < 128 || r.MemorySize > 10240 {
		return fmt.Errorf("memory_size must be between 128 and 10240 MB, got %d", r.MemorySize)
	}
	if r.Code == nil {
		return errors.New("code is required")
	}
	sources := 0
	if r.Code.ZipFile != "" {
		sources++
		zip, err := base64.StdEncoding.DecodeString(r.Code.ZipFile)
		if err != nil {
			return fmt.Errorf("code.zip_file must be base64: %w", err)
		}
		r.zip = zip
	}
	if r.Code.S3Bucket != "" || r.Code.S3Key != "" {
		sources++
		if r.Code.S3Bucket == "" || r.Code.S3Key == "" {
			return errors.New("code.s3_bucket and code.s3_key must be set together")
		}
	}
	if r.Code.ImageURI != "" {
		sources++
	}
	if sources != 1 {
		return errors.New("code needs exactly one of zip_file, s3_bucket/s3_key or image_uri")
	}
	// Image packages take both from the image config.
	if r.Code.ImageURI == "" {
		if r.Runtime == "" {
			return errors.New("runtime is required for zip packages")
		}
		if r.Handler == "" {
			return errors.New("handler is required for zip packages")
		}
	}
	return nil
}

type invokeRequest struct {
	FunctionName string `json:"function_name" valid:"required~function_name is required"`
	Payload      any    `json:"payload" valid:"-"`
}

func (r *invokeRequest) Validate() error {
	return mcp.ValidateStruct(r)
}

type functionNameRequest struct {
	FunctionName string `json:"function_name" valid:"required~function_name is required"`
}

func (r *functionNameRequest) Validate() error {
	return mcp.ValidateStruct(r)
}
