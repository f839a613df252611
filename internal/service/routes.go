package service

import (
	"context"
	nethttp "net/http"
	"net/url"

	"github.com/go-kratos/kratos/v2/transport/http"
)

// RegisterHTTPRoutes mounts the API on srv.
func (s *UniversityService) RegisterHTTPRoutes(srv *http.Server) {
	r := srv.Route("/api/university")

	// public widget beacons and lookups
	r.POST("/widget/chat-click", beacon(OperationChatClick, s.bindChatClick, s.ChatClick))
	r.POST("/widget/iframe-loaded", beacon(OperationIframeLoaded, bindBody[IframeLoadedRequest], s.IframeLoaded))
	r.POST("/widget/chat-click-answers", beacon(OperationChatClickAnswers, bindBody[ChatClickAnswersRequest], s.ChatClickAnswers))
	r.GET("/widget/my-widget", handle(OperationMyWidget, nil, s.MyWidget))
	r.GET("/widget/{widget_id}/status", handle(OperationWidgetStatus, bindWidgetID, s.WidgetStatus))
	r.GET("/widget/{widget_id}/config", handle(OperationWidgetConfig, bindWidgetID, s.WidgetConfig))
	r.GET("/widget/{widget_id}/joined-ambassadors", handle(OperationJoinedAmbassadors, bindWidgetID, s.JoinedAmbassadors))

	// operator widget management and analytics
	r.POST("/widget/generate", handle(OperationGenerateWidget, bindConfig, s.GenerateWidget))
	r.POST("/widget/verify", handle(OperationVerifyWidget, bindBody[VerifyWidgetRequest], s.VerifyWidget))
	r.GET("/widget/{widget_id}/chat-analytics", handle(OperationChatAnalytics, bindWidgetID, s.ChatAnalytics))
	r.GET("/widget/{widget_id}/chat-count", handle(OperationChatCount, bindWidgetID, s.ChatCount))
	r.GET("/widget/{widget_id}/chat-countries", handle(OperationChatCountries, bindWidgetID, s.ChatCountries))

	// invitations
	r.POST("/email/send-invitation", handle(OperationSendInvitation, bindBody[SendInvitationRequest], s.SendInvitation))
	r.POST("/email/send-bulk-invitations", handle(OperationBulkInvitations, bindBody[SendBulkInvitationsRequest], s.SendBulkInvitations))
	r.GET("/invitations", handle(OperationListInvitations, bindPage, s.ListInvitations))
	r.GET("/invitations/check/{email}", handle(OperationCheckInvitation, bindCheck, s.CheckInvitation))
	r.GET("/invitations/{token}/accept", handle(OperationRespondInvitation, bindRespond("accept"), s.RespondInvitation))
	r.GET("/invitations/{token}/decline", handle(OperationRespondInvitation, bindRespond("decline"), s.RespondInvitation))
	r.POST("/invitations/{email}/status", handle(OperationSetStatus, bindSetStatus, s.SetInvitationStatus))
}

// handle binds the request, runs it through the server middleware under
// operation and encodes the reply. Errors go to the server error encoder.
func handle[Req, Reply any](
	operation string,
	bind func(http.Context, *Req) error,
	call func(context.Context, *Req) (*Reply, error),
) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in Req
		if bind != nil {
			if err := bind(ctx, &in); err != nil {
				return err
			}
		}
		http.SetOperation(ctx, operation)
		h := ctx.Middleware(func(c context.Context, req any) (any, error) {
			reply, err := call(c, req.(*Req))
			if err != nil {
				return nil, toAPIError(err)
			}
			return reply, nil
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}

// beacon is handle for fire-and-forget widget calls: the caller always gets
// 200, with success=false and a short message on failure.
func beacon[Req any](
	operation string,
	bind func(http.Context, *Req) error,
	call func(context.Context, *Req) (*BeaconReply, error),
) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in Req
		http.SetOperation(ctx, operation)
		h := ctx.Middleware(func(c context.Context, req any) (any, error) {
			if err := bind(ctx, req.(*Req)); err != nil {
				return nil, err
			}
			reply, err := call(c, req.(*Req))
			if err != nil {
				return nil, toAPIError(err)
			}
			return reply, nil
		})
		out, err := h(ctx, &in)
		if err != nil {
			return ctx.Result(nethttp.StatusOK, &BeaconReply{Success: false, Message: beaconMessage("Request failed", err)})
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}

func bindBody[Req any](ctx http.Context, in *Req) error {
	return ctx.Bind(in)
}

func bindWidgetID(ctx http.Context, in *WidgetRequest) error {
	in.WidgetID = pathVar(ctx, "widget_id")
	return nil
}

func bindConfig(ctx http.Context, in *GenerateWidgetRequest) error {
	return ctx.Bind(&in.Config)
}

func bindPage(ctx http.Context, in *ListInvitationsRequest) error {
	return ctx.BindQuery(in)
}

func bindCheck(ctx http.Context, in *CheckInvitationRequest) error {
	in.Email = pathVar(ctx, "email")
	return nil
}

func bindRespond(action string) func(http.Context, *RespondRequest) error {
	return func(ctx http.Context, in *RespondRequest) error {
		in.Token = pathVar(ctx, "token")
		in.Action = action
		return nil
	}
}

func bindSetStatus(ctx http.Context, in *SetStatusRequest) error {
	if err := ctx.Bind(in); err != nil {
		return err
	}
	in.Email = pathVar(ctx, "email")
	return nil
}

func (s *UniversityService) bindChatClick(ctx http.Context, in *ChatClickRequest) error {
	if err := ctx.Bind(in); err != nil {
		return err
	}
	in.clientAddress = ClientAddress(ctx.Request())
	return nil
}

// pathVar returns a decoded path variable.
func pathVar(ctx http.Context, name string) string {
	v := ctx.Vars().Get(name)
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}
