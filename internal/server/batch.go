package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/morezero/typed-rpc/pkg/commsutil"
	"github.com/morezero/typed-rpc/pkg/rpc"
)

const batchLogPrefix = "server:batch"

// batchResult is an encoded reply plus the HTTP status it maps to. NATS
// replies carry only the body.
type batchResult struct {
	status int
	body   []byte
}

// runBatch decodes a batch, processes it and encodes the reply: the response
// array on success, an {"err": ...} envelope when the batch as a whole failed.
func runBatch(ctx context.Context, app *rpc.App, data []byte, batchID string) batchResult {
	start := time.Now()

	calls, err := rpc.DecodeBatch(data)
	if err != nil {
		slog.Warn(fmt.Sprintf("%s - batch %s: %v", batchLogPrefix, batchID, err))
		return errorResult(rpc.InvalidRequest(err.Error()))
	}

	responses, err := app.Process(ctx, calls)
	if err != nil {
		slog.Error(fmt.Sprintf("%s - batch %s failed: %v", batchLogPrefix, batchID, err))
		return errorResult(err)
	}

	body, err := commsutil.EncodePayload(responses)
	if err != nil {
		return errorResult(err)
	}

	failed := 0
	for _, r := range responses {
		if r.IsError() {
			failed++
		}
	}
	slog.Debug(fmt.Sprintf("%s - batch %s: %d calls, %d failed, %s", batchLogPrefix, batchID, len(calls), failed, time.Since(start)))
	return batchResult{status: http.StatusOK, body: body}
}

func errorResult(err error) batchResult {
	var rpcErr *rpc.Error
	if !errors.As(err, &rpcErr) {
		rpcErr = rpc.NewError(rpc.CodeAppError, err.Error())
	}

	body, encErr := commsutil.EncodeError(rpcErr)
	if encErr != nil {
		slog.Error(fmt.Sprintf("%s - failed to encode error %s: %v", batchLogPrefix, rpcErr.Code, encErr))
		body, _ = commsutil.EncodeError(rpc.NewError(rpcErr.Code, rpcErr.Message))
	}

	status := rpcErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return batchResult{status: status, body: body}
}
