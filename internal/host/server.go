package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/select-translator/pkg/translation"
)

// Translator 宿主需要的服务能力，由 *translation.Service 实现
type Translator interface {
	Translate(ctx context.Context, req translation.Request) ([]translation.Result, error)
	Settings(ctx context.Context) (translation.Settings, error)
	SaveSettings(ctx context.Context, settings translation.Settings) error
	ClearCache()
	Stats() translation.Stats
}

var _ Translator = (*translation.Service)(nil)

// Server 原生消息宿主：从 in 读取请求，每条消息独立处理，响应串行写到 out
type Server struct {
	svc     Translator
	in      io.Reader
	out     io.Writer
	logger  *zap.Logger
	version string

	writeMu  sync.Mutex
	inflight conc.WaitGroup
}

// NewServer 创建宿主
func NewServer(svc Translator, in io.Reader, out io.Writer, logger *zap.Logger, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		svc:     svc,
		in:      in,
		out:     out,
		logger:  logger,
		version: version,
	}
}

// Serve 处理消息直到输入结束或 ctx 取消，返回前等待所有进行中的请求写完响应
func (s *Server) Serve(ctx context.Context) error {
	msgs := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		defer close(msgs)
		for {
			raw, err := ReadMessage(s.in)
			if err != nil {
				readErr <- err
				return
			}
			select {
			case msgs <- raw:
			case <-ctx.Done():
				return
			}
		}
	}()

	s.logger.Info("原生消息宿主已启动", zap.String("version", s.version))

	for {
		select {
		case <-ctx.Done():
			s.inflight.Wait()
			return ctx.Err()
		case raw, ok := <-msgs:
			if !ok {
				s.inflight.Wait()
				var err error
				select {
				case err = <-readErr:
				default:
					err = ctx.Err()
				}
				if errors.Is(err, io.EOF) {
					s.logger.Info("输入已关闭，宿主退出")
					return nil
				}
				return fmt.Errorf("failed to read message: %w", err)
			}
			s.inflight.Go(func() {
				s.handle(ctx, raw)
			})
		}
	}
}

// handle 解析并分发一条消息
func (s *Server) handle(ctx context.Context, raw []byte) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		s.logger.Warn("无法解析消息", zap.Error(err))
		s.respond(Response{ID: uuid.NewString(), Error: "invalid message: " + err.Error()})
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	var resp Response
	var pc panics.Catcher
	pc.Try(func() {
		resp = s.dispatch(ctx, req)
	})
	if recovered := pc.Recovered(); recovered != nil {
		s.logger.Error("处理消息时发生 panic",
			zap.String("id", req.ID),
			zap.String("action", req.Action),
			zap.Any("panic", recovered.Value))
		resp = errorResponse(recovered.AsError())
	}

	resp.ID = req.ID
	s.respond(resp)
}

// dispatch 按动作调用服务
func (s *Server) dispatch(ctx context.Context, req Request) Response {
	s.logger.Debug("收到消息", zap.String("id", req.ID), zap.String("action", req.Action))

	switch req.Action {
	case ActionTranslate:
		var tr translation.Request
		if err := decodeData(req.Data, &tr); err != nil {
			return errorResponse(err)
		}
		results, err := s.svc.Translate(ctx, tr)
		if err != nil {
			return errorResponse(err)
		}
		return Response{Success: true, Results: results}

	case ActionGetSettings:
		settings, err := s.svc.Settings(ctx)
		if err != nil {
			return errorResponse(err)
		}
		return Response{Success: true, Settings: &settings}

	case ActionSaveSettings:
		var settings translation.Settings
		if err := decodeData(req.Data, &settings); err != nil {
			return errorResponse(err)
		}
		if err := s.svc.SaveSettings(ctx, settings); err != nil {
			return errorResponse(err)
		}
		return Response{Success: true}

	case ActionClearCache:
		s.svc.ClearCache()
		return Response{Success: true}

	case ActionGetStats:
		stats := s.svc.Stats()
		return Response{Success: true, Stats: &stats}

	case ActionPing:
		return Response{Success: true, Version: s.version}

	default:
		return Response{Error: fmt.Sprintf("unknown action: %q", req.Action)}
	}
}

// respond 写出响应，超过长度上限时改为错误响应
func (s *Server) respond(resp Response) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := WriteMessage(s.out, resp)
	if errors.Is(err, ErrMessageTooLarge) {
		s.logger.Warn("响应过大，改为错误响应", zap.String("id", resp.ID), zap.Error(err))
		err = WriteMessage(s.out, Response{ID: resp.ID, Error: err.Error()})
	}
	if err != nil {
		s.logger.Error("写出响应失败", zap.String("id", resp.ID), zap.Error(err))
	}
}

func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return translation.WrapError(translation.ErrInvalidRequest, translation.ErrCodeValidation, "missing data")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return translation.WrapError(err, translation.ErrCodeValidation, "invalid data")
	}
	return nil
}

func errorResponse(err error) Response {
	return Response{Error: err.Error(), Code: translation.ErrorCode(err)}
}
