package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"shopfront/internal/backend"
	"shopfront/internal/domain"
	applog "shopfront/internal/log"
	"shopfront/internal/repos"
	"shopfront/internal/validate"
)

const (
	MaxOfferImages = 3
	// MaxImageBytes caps a single uploaded image before encoding.
	MaxImageBytes = 2 << 20

	OfferFailedMessage  = "Failed to submit offer. Please try again."
	ContactRequiredText = "Contact number is required"
)

var (
	ErrTooManyImages = fmt.Errorf("at most %d images per offer", MaxOfferImages)
	ErrNoSuchImage   = errors.New("no image at that position")
	ErrNotAnImage    = errors.New("upload is not an image")
	ErrImageTooLarge = errors.New("image is too large")
)

type OfferSubmitter interface {
	SubmitOffer(token, idemKey string, req domain.OfferRequest) error
}

// Opener yields the content of one uploaded file.
type Opener func() (io.ReadCloser, error)

type OfferFields struct {
	Quantity      int
	ContactNumber string
	Description   string
}

// OfferResult is what the offer form shows after a submit.
type OfferResult struct {
	Success bool
	Error   string
}

type OfferService struct {
	API    OfferSubmitter
	Drafts *repos.OfferDraftRepo
	Flows  FlowStore
	Opts   FlowOptions
}

func NewOfferService(api OfferSubmitter, drafts *repos.OfferDraftRepo, flows FlowStore, opts FlowOptions) *OfferService {
	return &OfferService{API: api, Drafts: drafts, Flows: flows, Opts: opts}
}

func (s *OfferService) Images(sessionID, productID string) ([]string, error) {
	return s.Drafts.Images(sessionID, productID)
}

// AddImages encodes the uploads as data URLs and appends them to the draft in
// upload order. If the draft would end up with more than MaxOfferImages the
// whole batch is rejected and the draft is left as it was.
func (s *OfferService) AddImages(sessionID, productID string, files []Opener) ([]string, error) {
	cur, err := s.Drafts.Images(sessionID, productID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return cur, nil
	}
	if len(cur)+len(files) > MaxOfferImages {
		return cur, ErrTooManyImages
	}

	encoded := make([]string, len(files))
	var g errgroup.Group
	for i, open := range files {
		g.Go(func() error {
			uri, err := encodeImage(open)
			if err != nil {
				return err
			}
			encoded[i] = uri
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return cur, err
	}

	return s.Drafts.Update(sessionID, productID, func(cur []string) ([]string, error) {
		if len(cur)+len(encoded) > MaxOfferImages {
			return nil, ErrTooManyImages
		}
		return append(cur, encoded...), nil
	})
}

// RemoveImage drops the image at index; later images shift down.
func (s *OfferService) RemoveImage(sessionID, productID string, index int) ([]string, error) {
	return s.Drafts.Update(sessionID, productID, func(cur []string) ([]string, error) {
		if index < 0 || index >= len(cur) {
			return nil, ErrNoSuchImage
		}
		return append(cur[:index:index], cur[index+1:]...), nil
	})
}

// Submit sends the offer with the drafted images. It never returns an error;
// every failure is reported through OfferResult.Error.
func (s *OfferService) Submit(ctx context.Context, nav Navigator, token, sessionID, productID string, f OfferFields) OfferResult {
	contact := strings.TrimSpace(f.ContactNumber)
	if contact == "" {
		return OfferResult{Error: ContactRequiredText}
	}
	images, err := s.Drafts.Images(sessionID, productID)
	if err != nil {
		applog.L().Error("offer.draft.read.fail", zap.Error(err))
		return OfferResult{Error: OfferFailedMessage}
	}
	req := domain.OfferRequest{
		ProductID:     productID,
		Quantity:      max(1, f.Quantity),
		ContactNumber: contact,
		Description:   strings.TrimSpace(f.Description),
		Images:        images,
	}
	if err := validate.Struct(req); err != nil {
		return OfferResult{Error: err.Error()}
	}

	key := flowKey("offer", sessionID, productID)
	ok, err := s.Flows.Begin(ctx, key, s.Opts.InFlightTTL)
	if err != nil {
		applog.L().Error("flow.begin.fail", zap.String("key", key), zap.Error(err))
		return OfferResult{Error: OfferFailedMessage}
	}
	if !ok {
		return OfferResult{Error: ErrInFlight.Error()}
	}

	if err := s.API.SubmitOffer(token, uuid.NewString(), req); err != nil {
		applog.L().Warn("offer.submit.fail", zap.String("product_id", productID), zap.Error(err))
		msg := backend.MessageOf(err, OfferFailedMessage)
		if ferr := s.Flows.Finish(ctx, key, domain.Lifecycle{State: domain.FlowFailed, Message: msg}); ferr != nil {
			applog.L().Error("flow.finish.fail", zap.String("key", key), zap.Error(ferr))
		}
		return OfferResult{Error: msg}
	}

	if err := s.Drafts.Clear(sessionID, productID); err != nil {
		applog.L().Error("offer.draft.clear.fail", zap.Error(err))
	}
	if err := s.Flows.Finish(ctx, key, domain.Lifecycle{State: domain.FlowSucceeded}); err != nil {
		applog.L().Error("flow.finish.fail", zap.String("key", key), zap.Error(err))
	}
	nav.NavigateAfter(s.Opts.NavDelay, s.Opts.ProfilePath)
	return OfferResult{Success: true}
}

func (s *OfferService) State(ctx context.Context, sessionID, productID string) (domain.Lifecycle, error) {
	return s.Flows.Get(ctx, flowKey("offer", sessionID, productID))
}

func encodeImage(open Opener) (string, error) {
	rc, err := open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(rc, MaxImageBytes+1))
	if err != nil {
		return "", err
	}
	if n > MaxImageBytes {
		return "", ErrImageTooLarge
	}
	mt := mimetype.Detect(buf.Bytes())
	mime, _, _ := strings.Cut(mt.String(), ";")
	if !strings.HasPrefix(mime, "image/") {
		return "", ErrNotAnImage
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
