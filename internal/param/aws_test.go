package param

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

type getParameterStub struct {
	getParameterFn func(*ssm.GetParameterInput) (*ssm.GetParameterOutput, error)
}

func (s getParameterStub) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	return s.getParameterFn(in)
}

func TestParameterStoreFetcher(t *testing.T) {
	fetcher := &ParameterStoreFetcher{Client: getParameterStub{
		getParameterFn: func(in *ssm.GetParameterInput) (*ssm.GetParameterOutput, error) {
			if aws.ToString(in.Name) != "/imagegen/host" {
				t.Fatalf("unexpected name: %s", aws.ToString(in.Name))
			}
			if !aws.ToBool(in.WithDecryption) {
				t.Fatal("expected decryption")
			}
			return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: aws.String("images.example.com")}}, nil
		},
	}}

	got, err := fetcher.Fetch(context.Background(), "/imagegen/host")
	if err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}
	if got != "images.example.com" {
		t.Fatalf("unexpected value %q", got)
	}
}

func TestParameterStoreFetcherErrors(t *testing.T) {
	boom := errors.New("boom")
	fetcher := &ParameterStoreFetcher{Client: getParameterStub{
		getParameterFn: func(*ssm.GetParameterInput) (*ssm.GetParameterOutput, error) { return nil, boom },
	}}
	if _, err := fetcher.Fetch(context.Background(), "/x"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}

	fetcher.Client = getParameterStub{
		getParameterFn: func(*ssm.GetParameterInput) (*ssm.GetParameterOutput, error) { return &ssm.GetParameterOutput{}, nil },
	}
	if _, err := fetcher.Fetch(context.Background(), "/x"); err == nil {
		t.Fatal("expected error for empty parameter")
	}
}
