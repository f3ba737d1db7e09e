package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kubrck/Promptly/internal/core/ports"
)

// ChatHandler handles HTTP requests for a user's chats.
type ChatHandler struct {
	service ports.ChatService
}

func NewChatHandler(service ports.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// Create starts a new chat for the signed-in user.
//
// @Summary      Create a chat
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      createChatRequest  false  "Optional title"
// @Success      201   {object}  chatEnvelope
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/chats [post]
func (h *ChatHandler) Create(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req createChatRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	chat, err := h.service.Create(c.Request().Context(), p.UserID, req.Title)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, chatEnvelope{Chat: toChatResponse(chat)})
}

// List returns the user's chats, most recently updated first.
//
// @Summary      List chats
// @Tags         chats
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  chatListResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/chats [get]
func (h *ChatHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	chats, err := h.service.List(c.Request().Context(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toChatListResponse(chats))
}

// Get returns one chat with its messages.
//
// @Summary      Get a chat
// @Tags         chats
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Chat ID"
// @Success      200  {object}  chatEnvelope
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/chats/{id} [get]
func (h *ChatHandler) Get(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	chat, err := h.service.Get(c.Request().Context(), p.UserID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chatEnvelope{Chat: toChatResponse(chat)})
}

// SendMessage appends a user message and the generated reply.
//
// @Summary      Send a message
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string              true  "Chat ID"
// @Param        body  body      sendMessageRequest  true  "Message"
// @Success      200   {object}  sendMessageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /api/chats/{id}/messages [post]
func (h *ChatHandler) SendMessage(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req sendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	reply, err := h.service.SendMessage(c.Request().Context(), p.UserID, c.Param("id"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sendMessageResponse{Message: "Message sent successfully", Response: reply})
}

// Delete removes a chat.
//
// @Summary      Delete a chat
// @Tags         chats
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Chat ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/chats/{id} [delete]
func (h *ChatHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), p.UserID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Chat deleted successfully"})
}
