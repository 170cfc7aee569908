package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/physiotrack/evalform-service/internal/services"
	"github.com/physiotrack/evalform-service/internal/utils"
)

type HandlerManager struct {
	formHandler     *FormHandler
	responseHandler *ResponseHandler
	shareHandler    *ShareHandler
	messageHandler  *MessageHandler
	exportHandler   *ExportHandler
	streamHandler   *StreamHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		formHandler:     NewFormHandler(serviceManager.Catalog(), logger),
		responseHandler: NewResponseHandler(serviceManager.Response(), logger),
		shareHandler:    NewShareHandler(serviceManager.Share(), logger),
		messageHandler:  NewMessageHandler(serviceManager.Message(), logger),
		exportHandler:   NewExportHandler(serviceManager.Export(), logger),
		streamHandler:   NewStreamHandler(serviceManager.Catalog(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "evalform-service",
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware)
	{
		forms := v1.Group("/forms")
		{
			forms.GET("", hm.formHandler.ListForms)
			forms.GET("/watch", hm.streamHandler.WatchCatalog)
			forms.GET("/:id", hm.formHandler.GetForm)
		}

		responses := v1.Group("/responses")
		{
			responses.POST("", hm.responseHandler.SubmitResponse)
			responses.GET("", hm.responseHandler.ListResponses)
			responses.GET("/export", hm.exportHandler.ExportResponses)
			responses.POST("/share", hm.shareHandler.ShareResponse)
			responses.GET("/:id", hm.responseHandler.GetResponse)
			responses.DELETE("/:id", hm.responseHandler.DeleteResponse)
		}

		messages := v1.Group("/messages")
		{
			messages.POST("", hm.messageHandler.SendMessage)
			messages.GET("/threads", hm.messageHandler.ListThreads)
			messages.GET("/thread/:partner_id", hm.messageHandler.GetThread)
			messages.POST("/thread/:partner_id/read", hm.messageHandler.MarkThreadRead)
		}
	}
}
