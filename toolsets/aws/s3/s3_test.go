package awss3

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"awsinfra/internal/mcp"
)

type fakeS3 struct {
	S3API
	calls      []string
	create     *s3.CreateBucketInput
	policy     string
	tags       []s3types.Tag
	deleted    [][]s3types.ObjectIdentifier
	listErr    error
	objects    [][]string
	versionsOn bool
}

func (f *fakeS3) CreateBucket(_ context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.calls = append(f.calls, "CreateBucket")
	f.create = in
	return &s3.CreateBucketOutput{Location: aws.String("/" + aws.ToString(in.Bucket))}, nil
}

func (f *fakeS3) PutBucketVersioning(context.Context, *s3.PutBucketVersioningInput, ...func(*s3.Options)) (*s3.PutBucketVersioningOutput, error) {
	f.calls = append(f.calls, "PutBucketVersioning")
	return &s3.PutBucketVersioningOutput{}, nil
}

func (f *fakeS3) PutBucketPolicy(_ context.Context, in *s3.PutBucketPolicyInput, _ ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error) {
	f.calls = append(f.calls, "PutBucketPolicy")
	f.policy = aws.ToString(in.Policy)
	return &s3.PutBucketPolicyOutput{}, nil
}

func (f *fakeS3) PutBucketTagging(_ context.Context, in *s3.PutBucketTaggingInput, _ ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error) {
	f.calls = append(f.calls, "PutBucketTagging")
	f.tags = in.Tagging.TagSet
	return &s3.PutBucketTaggingOutput{}, nil
}

func (f *fakeS3) ListBuckets(context.Context, *s3.ListBucketsInput, ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	return &s3.ListBucketsOutput{
		Buckets: []s3types.Bucket{{Name: aws.String("logs")}, {Name: aws.String("assets")}},
		Owner:   &s3types.Owner{DisplayName: aws.String("dev"), ID: aws.String("abc")},
	}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	page := 0
	if in.ContinuationToken != nil {
		page = 1
	}
	out := &s3.ListObjectsV2Output{}
	for _, key := range f.objects[page] {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(key)})
	}
	if page+1 < len(f.objects) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String("next")
	}
	return out, nil
}

func (f *fakeS3) ListObjectVersions(context.Context, *s3.ListObjectVersionsInput, ...func(*s3.Options)) (*s3.ListObjectVersionsOutput, error) {
	if !f.versionsOn {
		return &s3.ListObjectVersionsOutput{}, nil
	}
	return &s3.ListObjectVersionsOutput{
		Versions:      []s3types.ObjectVersion{{Key: aws.String("a.txt"), VersionId: aws.String("v1")}},
		DeleteMarkers: []s3types.DeleteMarkerEntry{{Key: aws.String("b.txt"), VersionId: aws.String("v2")}},
	}, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.deleted = append(f.deleted, in.Delete.Objects)
	return &s3.DeleteObjectsOutput{}, nil
}

func (f *fakeS3) DeleteBucket(context.Context, *s3.DeleteBucketInput, ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
	f.calls = append(f.calls, "DeleteBucket")
	return &s3.DeleteBucketOutput{}, nil
}

func specsFor(client S3API, region string) map[string]mcp.ToolSpec {
	out := map[string]mcp.ToolSpec{}
	for _, spec := range ToolSpecs("aws", func(context.Context, string) (S3API, string, error) {
		return client, region, nil
	}) {
		out[spec.Name] = spec
	}
	return out
}

func TestCreateBucketOrderAndPolicy(t *testing.T) {
	client := &fakeS3{}
	result, err := specsFor(client, "eu-west-1")["create_s3_bucket"].Handler(context.Background(), mcp.ToolRequest{Arguments: map[string]any{
		"bucket_name":        "my-assets",
		"versioning":         true,
		"public_read_access": true,
		"tags":               map[string]any{"team": "web", "env": "dev"},
	}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want := "CreateBucket,PutBucketVersioning,PutBucketPolicy,PutBucketTagging"
	if got := strings.Join(client.calls, ","); got != want {
		t.Fatalf("unexpected call order %s", got)
	}
	if client.create.CreateBucketConfiguration == nil || client.create.CreateBucketConfiguration.LocationConstraint != "eu-west-1" {
		t.Fatalf("expected location constraint, got %#v", client.create.CreateBucketConfiguration)
	}
	var policy struct {
		Statement []struct {
			Sid      string
			Resource string
		}
	}
	if err := json.Unmarshal([]byte(client.policy), &policy); err != nil {
		t.Fatalf("policy json: %v", err)
	}
	if len(policy.Statement) != 1 || policy.Statement[0].Sid != "PublicReadGetObject" || policy.Statement[0].Resource != "arn:aws:s3:::my-assets/*" {
		t.Fatalf("unexpected policy %s", client.policy)
	}
	if len(client.tags) != 2 || aws.ToString(client.tags[0].Key) != "env" {
		t.Fatalf("expected sorted tags, got %#v", client.tags)
	}
	if result.Data["bucket_name"] != "my-assets" || result.Data["location"] != "/my-assets" || result.Data["region"] != "eu-west-1" {
		t.Fatalf("unexpected data %#v", result.Data)
	}
}

func TestCreateBucketUSEast1OmitsConstraint(t *testing.T) {
	client := &fakeS3{}
	if _, err := specsFor(client, "us-east-1")["create_s3_bucket"].Handler(context.Background(), mcp.ToolRequest{Arguments: map[string]any{
		"bucket_name": "plain-bucket",
	}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if client.create.CreateBucketConfiguration != nil {
		t.Fatalf("expected no location constraint in us-east-1")
	}
	if len(client.calls) != 1 {
		t.Fatalf("expected only CreateBucket, got %v", client.calls)
	}
}

func TestCreateBucketRejectsBadName(t *testing.T) {
	client := &fakeS3{}
	for _, name := range []string{"", "UPPER", "ab", "-leading"} {
		if _, err := specsFor(client, "us-east-1")["create_s3_bucket"].Handler(context.Background(), mcp.ToolRequest{Arguments: map[string]any{
			"bucket_name": name,
		}}); err == nil {
			t.Fatalf("expected validation error for %q", name)
		}
	}
	if len(client.calls) != 0 {
		t.Fatalf("expected no calls, got %v", client.calls)
	}
}

func TestListBuckets(t *testing.T) {
	result, err := specsFor(&fakeS3{}, "us-east-1")["list_s3_buckets"].Handler(context.Background(), mcp.ToolRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if result.Data["count"] != 2 {
		t.Fatalf("unexpected count %#v", result.Data["count"])
	}
	owner := result.Data["owner"].(map[string]any)
	if owner["ID"] != "abc" {
		t.Fatalf("unexpected owner %#v", owner)
	}
}

func TestDeleteBucketForceEmptiesFirst(t *testing.T) {
	client := &fakeS3{objects: [][]string{{"a.txt", "b.txt"}, {"c.txt"}}, versionsOn: true}
	result, err := specsFor(client, "us-east-1")["delete_s3_bucket"].Handler(context.Background(), mcp.ToolRequest{Arguments: map[string]any{
		"bucket_name": "old-bucket",
		"force":       true,
	}})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(client.deleted) != 3 {
		t.Fatalf("expected two object batches and one version batch, got %d", len(client.deleted))
	}
	if aws.ToString(client.deleted[2][0].VersionId) != "v1" {
		t.Fatalf("expected version ids in last batch, got %#v", client.deleted[2])
	}
	if result.Data["deleted_objects"] != 5 {
		t.Fatalf("unexpected deleted count %#v", result.Data["deleted_objects"])
	}
	if result.Data["message"] != "Bucket old-bucket deleted successfully" {
		t.Fatalf("unexpected message %#v", result.Data["message"])
	}
}

func TestDeleteBucketWithoutForceSkipsEmptying(t *testing.T) {
	client := &fakeS3{}
	if _, err := specsFor(client, "us-east-1")["delete_s3_bucket"].Handler(context.Background(), mcp.ToolRequest{Arguments: map[string]any{
		"bucket_name": "old-bucket",
	}}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(client.deleted) != 0 || strings.Join(client.calls, ",") != "DeleteBucket" {
		t.Fatalf("unexpected calls %v / %d batches", client.calls, len(client.deleted))
	}
}

func TestDeleteBucketForceToleratesMissingBucketWhileEmptying(t *testing.T) {
	client := &fakeS3{listErr: &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "gone"}}
	if _, err := specsFor(client, "us-east-1")["delete_s3_bucket"].Handler(context.Background(), mcp.ToolRequest{Arguments: map[string]any{
		"bucket_name": "gone-bucket",
		"force":       true,
	}}); err != nil {
		t.Fatalf("expected NoSuchBucket while emptying to be ignored: %v", err)
	}

	client = &fakeS3{listErr: &smithy.GenericAPIError{Code: "AccessDenied", Message: "no"}}
	_, err := specsFor(client, "us-east-1")["delete_s3_bucket"].Handler(context.Background(), mcp.ToolRequest{Arguments: map[string]any{
		"bucket_name": "locked",
		"force":       true,
	}})
	envelope := mcp.Envelope(mcp.ToolResult{}, err)
	if envelope["error_code"] != "AccessDenied" {
		t.Fatalf("unexpected envelope %#v", envelope)
	}
}
