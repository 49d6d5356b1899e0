package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/photo"
	"github.com/erazemk/najdeno/internal/policy"
	"github.com/erazemk/najdeno/internal/store"
)

// ListPublic returns the FOUND items anyone may browse, newest first.
func (s *Service) ListPublic(ctx context.Context) ([]model.PublicItemView, error) {
	if views, ok := s.cache.PublicItems(ctx); ok {
		return views, nil
	}

	items, err := store.ListItems(ctx, s.db, model.ItemStatusFound)
	if err != nil {
		return nil, storageError(err)
	}

	views := make([]model.PublicItemView, 0, len(items))
	for i := range items {
		views = append(views, items[i].PublicView())
	}
	s.cache.SetPublicItems(ctx, views)
	return views, nil
}

// GetPublic returns an item with its question text but no answers.
func (s *Service) GetPublic(ctx context.Context, itemID int64) (*model.PublicItemView, error) {
	item, err := s.liveItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	v := item.PublicDetail()
	return &v, nil
}

// ListStaff returns all live items with private fields, optionally filtered
// by status.
func (s *Service) ListStaff(ctx context.Context, id policy.Identity, status string) ([]model.StaffItemView, error) {
	if !policy.CanViewStaffItem(id) {
		return nil, deny("list_staff_items", "staff only")
	}
	if status != "" && !model.ValidItemStatus(status) {
		return nil, model.NewValidationError("unknown item status " + status)
	}

	items, err := store.ListItems(ctx, s.db, status)
	if err != nil {
		return nil, storageError(err)
	}

	views := make([]model.StaffItemView, 0, len(items))
	for i := range items {
		if err := store.LoadItemDetails(ctx, s.db, &items[i]); err != nil {
			return nil, storageError(err)
		}
		views = append(views, items[i].StaffView())
	}
	return views, nil
}

// GetStaff returns one live item with private fields and its claim ids.
func (s *Service) GetStaff(ctx context.Context, id policy.Identity, itemID int64) (*model.StaffItemView, error) {
	if !policy.CanViewStaffItem(id) {
		return nil, deny("get_staff_item", "staff only")
	}
	item, err := s.liveItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	v := item.StaffView()
	return &v, nil
}

// CreateItem registers a found item. New items always start as FOUND.
func (s *Service) CreateItem(ctx context.Context, id policy.Identity, in model.ItemInput) (*model.StaffItemView, error) {
	if !policy.CanCreateItem(id) {
		return nil, deny("create_item", "only staff can register found items")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	item, err := store.CreateItem(ctx, s.db, in, id.UserID)
	if err != nil {
		return nil, storageError(err)
	}
	s.cache.Invalidate(ctx)

	slog.Info("item registered", "user", id.Username, "item_id", item.ID, "title", item.Title)
	v := item.StaffView()
	return &v, nil
}

// UpdateItem applies a partial edit. CLAIMED can not be set here.
func (s *Service) UpdateItem(ctx context.Context, id policy.Identity, itemID int64, patch model.ItemPatch) (*model.StaffItemView, error) {
	if !policy.CanModifyItem(id) {
		return nil, deny("update_item", "only staff can edit found items")
	}

	item, err := s.liveItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	prevStatus := item.Status
	if err := patch.Apply(item); err != nil {
		return nil, err
	}

	ok, err := store.UpdateItem(ctx, s.db, item, prevStatus)
	if err != nil {
		return nil, storageError(err)
	}
	if !ok {
		if _, err := s.liveItem(ctx, itemID); err != nil {
			return nil, err
		}
		return nil, model.NewInvalidStateError("item status changed while editing")
	}
	s.cache.Invalidate(ctx)

	updated, err := s.liveItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if updated.Status != prevStatus {
		slog.Info("item status changed", "user", id.Username, "item_id", itemID, "from", prevStatus, "to", updated.Status)
	}
	v := updated.StaffView()
	return &v, nil
}

// DeleteItem soft-deletes an item. Claims filed against it keep resolving.
func (s *Service) DeleteItem(ctx context.Context, id policy.Identity, itemID int64) error {
	if !policy.CanModifyItem(id) {
		return deny("delete_item", "only staff can delete found items")
	}

	ok, err := store.DeleteItem(ctx, s.db, itemID)
	if err != nil {
		return storageError(err)
	}
	if !ok {
		return model.NewNotFoundError("item")
	}
	s.cache.Invalidate(ctx)

	slog.Info("item deleted", "user", id.Username, "item_id", itemID)
	return nil
}

// SetItemPhoto normalizes an uploaded photo, stores it and points the item's
// image URL at it.
func (s *Service) SetItemPhoto(ctx context.Context, id policy.Identity, itemID int64, r io.Reader) (*model.StaffItemView, error) {
	if !policy.CanModifyItem(id) {
		return nil, deny("set_item_photo", "only staff can upload photos")
	}
	if _, err := s.liveItem(ctx, itemID); err != nil {
		return nil, err
	}

	p, err := photo.Normalize(r)
	switch {
	case errors.Is(err, photo.ErrTooLarge):
		return nil, model.NewValidationError("photo exceeds upload limit")
	case err != nil:
		return nil, model.NewValidationError("photo must be a JPEG or PNG image")
	}

	ok, err := store.SetItemPhoto(ctx, s.db, itemID, p.Data, p.MIME, PhotoURL(itemID))
	if err != nil {
		return nil, storageError(err)
	}
	if !ok {
		return nil, model.NewNotFoundError("item")
	}
	s.cache.Invalidate(ctx)

	slog.Info("item photo uploaded", "user", id.Username, "item_id", itemID, "width", p.Width, "height", p.Height)
	item, err := s.liveItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	v := item.StaffView()
	return &v, nil
}

// GetItemPhoto returns a live item's photo and its MIME type.
func (s *Service) GetItemPhoto(ctx context.Context, itemID int64) ([]byte, string, error) {
	data, mime, err := store.GetItemPhoto(ctx, s.db, itemID)
	if err != nil {
		return nil, "", storageError(err)
	}
	if data == nil {
		return nil, "", model.NewNotFoundError("photo")
	}
	return data, mime, nil
}

// PhotoURL is the public URL of an item's stored photo.
func PhotoURL(itemID int64) string {
	return fmt.Sprintf("/api/founditems/%d/photo", itemID)
}

// liveItem loads an item with details, treating soft-deleted items as absent.
func (s *Service) liveItem(ctx context.Context, itemID int64) (*model.FoundItem, error) {
	item, err := store.GetItem(ctx, s.db, itemID)
	if err != nil {
		return nil, storageError(err)
	}
	if item == nil || item.DeletedAt != nil {
		return nil, model.NewNotFoundError("item")
	}
	return item, nil
}
