package translate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
)

// LambdaInvoker is the subset of the Lambda client used here.
type LambdaInvoker interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// lambdaRequest is the chunked payload understood by translator Lambdas.
type lambdaRequest struct {
	Chunks     [][]string `json:"chunks"`
	TargetLang string     `json:"target_lang"`
}

type lambdaResponse struct {
	Translations [][]string `json:"translations"`
	Error        string     `json:"error,omitempty"`
}

// LambdaTranslator sends transcript chunks to a translator Lambda function.
// Each chunk travels as its own one-text group.
type LambdaTranslator struct {
	client       LambdaInvoker
	functionName string
}

func NewLambdaTranslator(client LambdaInvoker, functionName string) *LambdaTranslator {
	return &LambdaTranslator{client: client, functionName: functionName}
}

// NewLambdaTranslatorFromEnv uses the default AWS credential chain.
func NewLambdaTranslatorFromEnv(ctx context.Context, functionName string) (*LambdaTranslator, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewLambdaTranslator(lambda.NewFromConfig(cfg), functionName), nil
}

func (t *LambdaTranslator) Name() string { return "lambda:" + t.functionName }

func (t *LambdaTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	out, err := t.TranslateBatch(ctx, []string{text}, targetLang)
	if err != nil {
		return "", err
	}
	return out[0], nil
}

func (t *LambdaTranslator) TranslateBatch(ctx context.Context, texts []string, targetLang string) ([]string, error) {
	chunks := make([][]string, len(texts))
	for i, text := range texts {
		chunks[i] = []string{text}
	}
	payload, err := json.Marshal(lambdaRequest{
		Chunks:     chunks,
		TargetLang: targetLang,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	out, err := t.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName: aws.String(t.functionName),
		Payload:      payload,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", t.functionName, err)
	}
	if out.FunctionError != nil {
		return nil, fmt.Errorf("lambda %s error: %s: %s", t.functionName, aws.ToString(out.FunctionError), string(out.Payload))
	}

	var resp lambdaResponse
	if err := json.Unmarshal(out.Payload, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("translator error: %s", resp.Error)
	}
	if len(resp.Translations) != len(texts) {
		return nil, fmt.Errorf("translator returned %d groups for %d chunks", len(resp.Translations), len(texts))
	}

	translations := make([]string, len(texts))
	for i, group := range resp.Translations {
		if len(group) == 0 {
			return nil, fmt.Errorf("translator returned an empty group at %d", i)
		}
		translations[i] = group[0]
	}
	return translations, nil
}
