package v1

import (
	"errors"
	"io"
	"net/http"

	"github.com/andreyxaxa/PixelVault/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/PixelVault/internal/controller/restapi/v1/validate"
	"github.com/andreyxaxa/PixelVault/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

const _defaultListLimit = 24

// @Summary  	Upload image
// @Description Derives placeholder, thumbnail and full renditions, stores them with the original and creates the record
// @Tags 		images
// @Accept 		mpfd
// @Produce 	json
// @Param 		file  formData file   true  "Image file"
// @Param 		title formData string false "Title"
// @Success 	201 {object} response.Image
// @Failure 	400 {object} response.Error "Missing file or bad title"
// @Failure 	401 {object} response.Error "No session"
// @Failure 	413 {object} response.Error "File too large"
// @Failure 	422 {object} response.Error "Not a decodable image"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/images [post]
func (r *V1) uploadImage(ctx *fiber.Ctx) error {
	userID, err := r.currentUserID(ctx)
	if err != nil {
		return r.fail(ctx, err, "uploadImage")
	}
	if userID == 0 {
		return errorResponse(ctx, http.StatusUnauthorized, tokenUnauthorized)
	}

	// 1. validate
	file, err := ctx.FormFile(validate.FileField)
	if err != nil {
		return errorResponse(ctx, http.StatusBadRequest, tokenFileRequired)
	}

	if file.Size == 0 {
		return errorResponse(ctx, http.StatusBadRequest, tokenEmptyFile)
	}

	if r.maxUploadSize > 0 && file.Size > r.maxUploadSize {
		return errorResponse(ctx, http.StatusRequestEntityTooLarge, tokenFileTooLarge)
	}

	title := ctx.FormValue(validate.TitleField)
	if !validate.Title(title) {
		return errorResponse(ctx, http.StatusBadRequest, tokenInvalidTitle)
	}

	// 2. read
	f, err := file.Open()
	if err != nil {
		return r.fail(ctx, err, "uploadImage - file.Open")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return r.fail(ctx, err, "uploadImage - io.ReadAll")
	}

	// 3. ingest
	image, err := r.img.Upload(ctx.UserContext(), userID, title, data)
	if err != nil {
		if errors.Is(err, errs.ErrDecode) {
			return errorResponse(ctx, http.StatusUnprocessableEntity, tokenUndecodableImage)
		}
		return r.fail(ctx, err, "uploadImage")
	}

	publicID, err := r.img.PublicID(image.ID)
	if err != nil {
		return r.fail(ctx, err, "uploadImage")
	}

	return ctx.Status(http.StatusCreated).JSON(response.NewImage(publicID, image))
}

// @Summary 	List images
// @Description Newest first, deleted images excluded
// @Tags 		images
// @Produce 	json
// @Param 		limit query int    false "Page size (1..100)"
// @Param 		after query string false "Cursor from the previous page"
// @Success 	200 {object} response.ImageList
// @Failure 	400 {object} response.Error "Bad limit or cursor"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/images [get]
func (r *V1) listImages(ctx *fiber.Ctx) error {
	limit, ok := validate.ListLimit(ctx.Query("limit"))
	if !ok {
		return errorResponse(ctx, http.StatusBadRequest, tokenInvalidLimit)
	}
	if limit == 0 {
		limit = _defaultListLimit
	}

	images, err := r.img.List(ctx.UserContext(), ctx.Query("after"), limit)
	if err != nil {
		return r.fail(ctx, err, "listImages")
	}

	resp := response.ImageList{Images: make([]response.Image, 0, len(images))}

	for _, image := range images {
		publicID, err := r.img.PublicID(image.ID)
		if err != nil {
			return r.fail(ctx, err, "listImages")
		}
		resp.Images = append(resp.Images, response.NewImage(publicID, image))
	}

	if len(images) == limit {
		resp.Next = resp.Images[len(resp.Images)-1].ID
	}

	return ctx.JSON(resp)
}

// @Summary 	Get image metadata
// @Tags 		images
// @Produce 	json
// @Param 		id path string true "Image ID"
// @Success 	200 {object} response.Image
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	404 {object} response.Error "Image not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/images/{id} [get]
func (r *V1) getImage(ctx *fiber.Ctx) error {
	image, err := r.img.Get(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return r.fail(ctx, err, "getImage")
	}

	publicID, err := r.img.PublicID(image.ID)
	if err != nil {
		return r.fail(ctx, err, "getImage")
	}

	return ctx.JSON(response.NewImage(publicID, image))
}

// @Summary 	Delete image
// @Description Soft delete; owner only. Stored bytes are kept.
// @Tags 		images
// @Param		id path string true "Image ID"
// @Success		204 "Deleted"
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	401 {object} response.Error "No session"
// @Failure 	403 {object} response.Error "Not the owner"
// @Failure 	404 {object} response.Error "Image not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/images/{id} [delete]
func (r *V1) deleteImage(ctx *fiber.Ctx) error {
	userID, err := r.currentUserID(ctx)
	if err != nil {
		return r.fail(ctx, err, "deleteImage")
	}

	if err = r.img.Delete(ctx.UserContext(), userID, ctx.Params("id")); err != nil {
		return r.fail(ctx, err, "deleteImage")
	}

	return ctx.SendStatus(http.StatusNoContent)
}

// @Summary 	Regenerate renditions
// @Description Queues a rebuild of placeholder, thumbnail and full renditions from the stored original; owner only
// @Tags 		images
// @Param		id path string true "Image ID"
// @Success		202 "Queued"
// @Failure 	400 {object} response.Error "Invalid ID"
// @Failure 	401 {object} response.Error "No session"
// @Failure 	403 {object} response.Error "Not the owner"
// @Failure 	404 {object} response.Error "Image or original not found"
// @Failure 	500 {object} response.Error "Internal"
// @Router 		/images/{id}/regenerate [post]
func (r *V1) regenerateImage(ctx *fiber.Ctx) error {
	userID, err := r.currentUserID(ctx)
	if err != nil {
		return r.fail(ctx, err, "regenerateImage")
	}

	if err = r.img.RequestRegeneration(ctx.UserContext(), userID, ctx.Params("id")); err != nil {
		return r.fail(ctx, err, "regenerateImage")
	}

	return ctx.SendStatus(http.StatusAccepted)
}
