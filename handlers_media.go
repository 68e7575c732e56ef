package figcms

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (a *App) handleListMedia(c echo.Context) error {
	records, err := a.Media.List()
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, echo.Map{"data": records, "count": len(records)})
}

func (a *App) handleUploadMedia(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return invalidInput("No file provided")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	rec, err := a.Media.SaveUpload(
		file.Filename,
		file.Header.Get(echo.HeaderContentType),
		file.Size,
		src,
		c.FormValue("alt"),
		c.FormValue("caption"),
		"admin",
	)
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, echo.Map{"data": rec, "message": "File uploaded successfully"})
}

func (a *App) handleUpdateMedia(c echo.Context) error {
	var in struct {
		ID      string `json:"id"`
		Alt     string `json:"alt"`
		Caption string `json:"caption"`
	}
	if err := c.Bind(&in); err != nil {
		return invalidInput("Invalid request body")
	}
	if in.ID == "" {
		return invalidInput("Media ID is required")
	}
	rec, err := a.Media.UpdateMeta(in.ID, in.Alt, in.Caption)
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, echo.Map{"data": rec, "message": "Media updated successfully"})
}

func (a *App) handleDeleteMedia(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return invalidInput("Media ID is required")
	}
	if _, err := a.Media.Delete(id); err != nil {
		return err
	}
	return OK(c, http.StatusOK, echo.Map{"message": "Media deleted successfully"})
}
