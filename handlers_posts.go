package figcms

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (a *App) handleListPosts(c echo.Context) error {
	filter := PostFilter{
		Status:     c.QueryParam("status"),
		Visibility: c.QueryParam("visibility"),
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return invalidInput("limit must be a non-negative integer")
		}
		filter.Limit = n
	}
	posts, err := a.Store.ListPosts(filter)
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, echo.Map{"data": posts, "total": len(posts)})
}

func (a *App) handleCreatePost(c echo.Context) error {
	var in PostInput
	if err := c.Bind(&in); err != nil {
		return invalidInput("Invalid request body")
	}
	post, err := a.Store.CreatePost(in)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return OK(c, http.StatusCreated, echo.Map{"data": post, "message": "Post created successfully"})
}

func (a *App) handleGetPost(c echo.Context) error {
	post, err := a.Store.GetPostByID(c.Param("id"))
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, echo.Map{"data": post})
}

func (a *App) handleUpdatePost(c echo.Context) error {
	var in PostInput
	if err := c.Bind(&in); err != nil {
		return invalidInput("Invalid request body")
	}
	post, err := a.Store.UpdatePost(c.Param("id"), in)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	return OK(c, http.StatusOK, echo.Map{"data": post, "message": "Post updated successfully"})
}

func (a *App) handleDeletePost(c echo.Context) error {
	id := c.Param("id")
	post, err := a.Store.GetPostByID(id)
	if err != nil {
		return err
	}
	if err := a.Store.DeletePost(id); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return OK(c, http.StatusOK, echo.Map{"data": post, "message": "Post deleted successfully"})
}

func (a *App) handleGetPostBySlug(c echo.Context) error {
	post, err := a.Cache.GetBySlug(c.Param("slug"))
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, echo.Map{"data": post})
}
