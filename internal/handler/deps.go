package handler

import (
	"github.com/asif-git-hub/adda-chat-app/internal/app/chat"
	"github.com/asif-git-hub/adda-chat-app/internal/configs"
)

// AppDeps bundles the shared collaborators the handlers are wired with.
type AppDeps struct {
	Registry    *chat.Registry
	Broadcasts  *chat.Router
	IsOffensive chat.ModerationFunc
	Config      *configs.AppConfig
}
