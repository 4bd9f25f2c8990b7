package storage

import (
	"context"
	"fmt"
	"qris-payment-service/internal/app/contracts"
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/exceptions"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const DefaultCallbackArchivePrefix = "callbacks"

type callbackArchive struct {
	storage    Storage
	bucketName string
	prefix     string
	now        func() time.Time
	Log        *zap.Logger
}

// NewCallbackArchive stores every verified processor callback as a JSON
// object named <prefix>/<merchantOrderId>/<unix nanos>.json.
func NewCallbackArchive(storage Storage, bucketName, prefix string, logger *zap.Logger) contracts.CallbackArchive {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultCallbackArchivePrefix
	}
	return &callbackArchive{
		storage:    storage,
		bucketName: bucketName,
		prefix:     prefix,
		now:        time.Now,
		Log:        logger,
	}
}

func (a *callbackArchive) Archive(ctx context.Context, merchantOrderID string, payload interface{}) (string, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	data, err := json.Marshal(payload)
	if err != nil {
		return "", exceptions.ErrCannotMarshalJSON(err)
	}

	objectName := fmt.Sprintf("%s/%s/%d.json", a.prefix, merchantOrderID, a.now().UnixNano())
	name, err := a.storage.UploadObject(ctx, a.bucketName, objectName, constvars.MIMEApplicationJSON, data)
	if err != nil {
		a.Log.Error("callbackArchive.Archive error calling storage.UploadObject",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBucketNameKey, a.bucketName),
			zap.String(constvars.LoggingObjectNameKey, objectName),
			zap.Error(err),
		)
		return "", err
	}

	a.Log.Info("callbackArchive.Archive stored callback",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMerchantOrderIDKey, merchantOrderID),
		zap.String(constvars.LoggingObjectNameKey, name),
	)
	return name, nil
}

type noopCallbackArchive struct{}

func NewNoopCallbackArchive() contracts.CallbackArchive {
	return noopCallbackArchive{}
}

func (noopCallbackArchive) Archive(context.Context, string, interface{}) (string, error) {
	return "", nil
}
