package capture_routers

import (
	"github.com/gin-gonic/gin"
	captureApi "github.com/rapidaai/capture/api/capture-api/api/capture"
	internal_capture "github.com/rapidaai/capture/api/capture-api/internal/capture"
	internal_page "github.com/rapidaai/capture/api/capture-api/internal/page"
	internal_type "github.com/rapidaai/capture/api/capture-api/internal/type"
	"github.com/rapidaai/capture/config"
	"github.com/rapidaai/capture/pkg/commons"
)

func CaptureApiRoute(
	cfg *config.AppConfig,
	engine *gin.Engine,
	logger commons.Logger,
	session *internal_capture.Session,
	objects internal_type.ObjectURLStore,
	page *internal_page.Page,
) {
	logger.Info("CaptureApiRoute added to engine.")
	cApi := captureApi.NewCaptureApi(cfg, logger, session, objects, page)

	engine.GET("/", cApi.Index)

	recording := engine.Group("v1/recording")
	{
		recording.GET("", cApi.GetRecording)
		recording.POST("/start", cApi.StartRecording)
		recording.POST("/stop", cApi.StopRecording)
		recording.POST("/reset", cApi.ResetRecording)
	}

	apiv1 := engine.Group("v1")
	{
		apiv1.GET("/objects/:id", cApi.GetObject)
		apiv1.GET("/page/ws", cApi.PageStream)
	}
}
