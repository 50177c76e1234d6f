package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bobsgarage/api/internal/cache"
	"bobsgarage/api/internal/middleware"
	"bobsgarage/api/internal/models"
	"bobsgarage/api/internal/repository"
)

type postRequest struct {
	Title     string  `json:"title" binding:"required"`
	Body      string  `json:"body" binding:"required"`
	ImageURL  *string `json:"imageUrl"`
	Published bool    `json:"published"`
}

type postResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	ImageURL  *string   `json:"imageUrl"`
	Published bool      `json:"published"`
	AuthorID  int64     `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
}

func toPostResponse(post models.BlogPost) postResponse {
	return postResponse{
		ID:        post.ID,
		Title:     post.Title,
		Body:      post.Body,
		ImageURL:  post.ImageURL,
		Published: post.Published,
		AuthorID:  post.AuthorID,
		CreatedAt: post.CreatedAt,
	}
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = 20
	offset = 0

	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}
	return limit, offset
}

// ListPosts serves published posts to the public site. Admins can pass
// ?drafts=true to include unpublished work; that path bypasses the cache.
func (h HandlerSet) ListPosts(c *gin.Context) {
	limit, offset := pagination(c)

	if c.Query("drafts") == "true" {
		if user, ok := middleware.CurrentUser(c); ok && user.IsAdmin {
			posts, err := h.blog.ListAll(c.Request.Context(), limit, offset)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"posts": toPostResponses(posts)})
			return
		}
	}

	if limit == 20 && offset == 0 {
		var cached []postResponse
		if err := h.content.Get(c.Request.Context(), cache.KeyBlogList, &cached); err == nil {
			c.JSON(http.StatusOK, gin.H{"posts": cached})
			return
		}
	}

	posts, err := h.blog.ListPublished(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := toPostResponses(posts)
	if limit == 20 && offset == 0 {
		h.content.Set(c.Request.Context(), cache.KeyBlogList, resp)
	}

	c.JSON(http.StatusOK, gin.H{"posts": resp})
}

func toPostResponses(posts []models.BlogPost) []postResponse {
	resp := make([]postResponse, 0, len(posts))
	for _, post := range posts {
		resp = append(resp, toPostResponse(post))
	}
	return resp
}

func (h HandlerSet) GetPost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_post_id"})
		return
	}

	post, err := h.blog.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Drafts are not public.
	if !post.Published {
		user, ok := middleware.CurrentUser(c)
		if !ok || !user.IsAdmin {
			c.JSON(http.StatusNotFound, gin.H{"error": "post_not_found"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"post": toPostResponse(post)})
}

func (h HandlerSet) CreatePost(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := models.BlogPost{
		Title:     req.Title,
		Body:      req.Body,
		ImageURL:  req.ImageURL,
		Published: req.Published,
		AuthorID:  user.ID,
	}
	if err := h.blog.Create(c.Request.Context(), &post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.content.Invalidate(c.Request.Context(), cache.KeyBlogList)

	c.JSON(http.StatusCreated, gin.H{"post": toPostResponse(post)})
}

func (h HandlerSet) UpdatePost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_post_id"})
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := models.BlogPost{
		ID:        id,
		Title:     req.Title,
		Body:      req.Body,
		ImageURL:  req.ImageURL,
		Published: req.Published,
	}
	if err := h.blog.Update(c.Request.Context(), post); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.content.Invalidate(c.Request.Context(), cache.KeyBlogList)

	c.JSON(http.StatusOK, gin.H{"post": toPostResponse(post)})
}

func (h HandlerSet) DeletePost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_post_id"})
		return
	}

	if err := h.blog.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.content.Invalidate(c.Request.Context(), cache.KeyBlogList)

	c.Status(http.StatusNoContent)
}
