package awss3

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	awslib "awsinfra/internal/aws"
	"awsinfra/internal/mcp"
	"awsinfra/toolsets/aws/shape"
)

type Service struct {
	s3Client  S3Func
	toolsetID string
}

func ToolSpecs(toolsetID string, s3Client S3Func) []mcp.ToolSpec {
	svc := &Service{s3Client: s3Client, toolsetID: toolsetID}
	return []mcp.ToolSpec{
		{
			Name:        "create_s3_bucket",
			Description: "Create an S3 bucket with optional versioning, public read and tags.",
			ToolsetID:   toolsetID,
			InputSchema: schemaCreateBucket(),
			Safety:      mcp.SafetyWrite,
			Handler:     svc.handleCreateBucket,
		},
		{
			Name:        "list_s3_buckets",
			Description: "List S3 buckets owned by the account.",
			ToolsetID:   toolsetID,
			InputSchema: shape.Object(nil),
			Safety:      mcp.SafetyReadOnly,
			Handler:     svc.handleListBuckets,
		},
		{
			Name:        "delete_s3_bucket",
			Description: "Delete an S3 bucket; force empties it first.",
			ToolsetID:   toolsetID,
			InputSchema: schemaDeleteBucket(),
			Safety:      mcp.SafetyDestructive,
			Handler:     svc.handleDeleteBucket,
		},
	}
}

func (s *Service) handleCreateBucket(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in createBucketRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.s3Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &s3.CreateBucketInput{Bucket: aws.String(in.BucketName)}
	// us-east-1 rejects an explicit location constraint.
	if usedRegion != awslib.DefaultRegion {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(usedRegion),
		}
	}
	out, err := client.CreateBucket(ctx, input)
	if err != nil {
		return mcp.ToolResult{}, err
	}
	if in.Versioning {
		if _, err := client.PutBucketVersioning(ctx, &s3.PutBucketVersioningInput{
			Bucket:                  aws.String(in.BucketName),
			VersioningConfiguration: &s3types.VersioningConfiguration{Status: s3types.BucketVersioningStatusEnabled},
		}); err != nil {
			return mcp.ToolResult{}, err
		}
	}
	if in.PublicReadAccess {
		policy, err := publicReadPolicy(in.BucketName)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		if _, err := client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
			Bucket: aws.String(in.BucketName),
			Policy: aws.String(policy),
		}); err != nil {
			return mcp.ToolResult{}, err
		}
	}
	if len(in.Tags) > 0 {
		tagSet := make([]s3types.Tag, 0, len(in.Tags))
		for _, key := range shape.SortedKeys(in.Tags) {
			tagSet = append(tagSet, s3types.Tag{Key: aws.String(key), Value: aws.String(in.Tags[key])})
		}
		if _, err := client.PutBucketTagging(ctx, &s3.PutBucketTaggingInput{
			Bucket:  aws.String(in.BucketName),
			Tagging: &s3types.Tagging{TagSet: tagSet},
		}); err != nil {
			return mcp.ToolResult{}, err
		}
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region":      usedRegion,
			"bucket_name": in.BucketName,
			"location":    aws.ToString(out.Location),
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{in.BucketName}},
	}, nil
}

func (s *Service) handleListBuckets(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	client, usedRegion, err := s.s3Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	input := &s3.ListBucketsInput{}
	buckets := []map[string]any{}
	owner := map[string]any{}
	for {
		out, err := client.ListBuckets(ctx, input)
		if err != nil {
			return mcp.ToolResult{}, err
		}
		for _, bucket := range out.Buckets {
			buckets = append(buckets, map[string]any{
				"Name":         aws.ToString(bucket.Name),
				"CreationDate": shape.Time(bucket.CreationDate),
				"BucketRegion": aws.ToString(bucket.BucketRegion),
			})
		}
		if out.Owner != nil {
			owner = map[string]any{
				"DisplayName": aws.ToString(out.Owner.DisplayName),
				"ID":          aws.ToString(out.Owner.ID),
			}
		}
		if aws.ToString(out.ContinuationToken) == "" {
			break
		}
		input.ContinuationToken = out.ContinuationToken
	}
	return mcp.ToolResult{
		Data: map[string]any{
			"region":  usedRegion,
			"buckets": buckets,
			"owner":   owner,
			"count":   len(buckets),
		},
		Metadata: mcp.ToolMetadata{Region: usedRegion},
	}, nil
}

func (s *Service) handleDeleteBucket(ctx context.Context, req mcp.ToolRequest) (mcp.ToolResult, error) {
	var in deleteBucketRequest
	if err := mcp.DecodeRequest(req.Arguments, &in); err != nil {
		return mcp.ToolResult{}, err
	}
	client, usedRegion, err := s.s3Client(ctx, req.Region())
	if err != nil {
		return mcp.ToolResult{}, err
	}
	data := map[string]any{"region": usedRegion, "bucket_name": in.BucketName}
	if in.Force {
		removed, err := emptyBucket(ctx, client, in.BucketName)
		if err != nil && !isNoSuchBucket(err) {
			return mcp.ToolResult{}, err
		}
		data["deleted_objects"] = removed
	}
	if _, err := client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(in.BucketName)}); err != nil {
		return mcp.ToolResult{}, err
	}
	data["message"] = fmt.Sprintf("Bucket %s deleted successfully", in.BucketName)
	return mcp.ToolResult{
		Data:     data,
		Metadata: mcp.ToolMetadata{Region: usedRegion, Resources: []string{in.BucketName}},
	}, nil
}

// emptyBucket removes current objects, then every version and delete marker,
// and returns how many keys were deleted.
func emptyBucket(ctx context.Context, client S3API, bucket string) (int, error) {
	removed := 0
	objects := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{Bucket: aws.String(bucket)})
	for objects.HasMorePages() {
		page, err := objects.NextPage(ctx)
		if err != nil {
			return removed, err
		}
		ids := make([]s3types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			ids = append(ids, s3types.ObjectIdentifier{Key: obj.Key})
		}
		n, err := deleteBatch(ctx, client, bucket, ids)
		removed += n
		if err != nil {
			return removed, err
		}
	}

	input := &s3.ListObjectVersionsInput{Bucket: aws.String(bucket)}
	for {
		page, err := client.ListObjectVersions(ctx, input)
		if err != nil {
			return removed, err
		}
		ids := make([]s3types.ObjectIdentifier, 0, len(page.Versions)+len(page.DeleteMarkers))
		for _, version := range page.Versions {
			ids = append(ids, s3types.ObjectIdentifier{Key: version.Key, VersionId: version.VersionId})
		}
		for _, marker := range page.DeleteMarkers {
			ids = append(ids, s3types.ObjectIdentifier{Key: marker.Key, VersionId: marker.VersionId})
		}
		n, err := deleteBatch(ctx, client, bucket, ids)
		removed += n
		if err != nil {
			return removed, err
		}
		if !aws.ToBool(page.IsTruncated) {
			break
		}
		input.KeyMarker = page.NextKeyMarker
		input.VersionIdMarker = page.NextVersionIdMarker
	}
	return removed, nil
}

func deleteBatch(ctx context.Context, client S3API, bucket string, ids []s3types.ObjectIdentifier) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	out, err := client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &s3types.Delete{Objects: ids, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return 0, err
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return len(ids) - len(out.Errors), fmt.Errorf("failed to delete %d objects from %s: %s: %s",
			len(out.Errors), bucket, aws.ToString(first.Key), aws.ToString(first.Message))
	}
	return len(ids), nil
}

func isNoSuchBucket(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucket"
}

func publicReadPolicy(bucket string) (string, error) {
	policy := map[string]any{
		"Version": "2012-10-17",
		"Statement": []map[string]any{{
			"Sid":       "PublicReadGetObject",
			"Effect":    "Allow",
			"Principal": "*",
			"Action":    "s3:GetObject",
			"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
		}},
	}
	encoded, err := json.Marshal(policy)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
