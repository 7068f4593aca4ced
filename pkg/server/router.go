package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"slc/pkg/compiler"
	"slc/pkg/config"
	"slc/pkg/cpu"
)

type CompileRequest struct {
	Source string `json:"source"`
	Run    bool   `json:"run"`
}

type MachineState struct {
	A         byte           `json:"a"`
	B         byte           `json:"b"`
	Z         bool           `json:"z"`
	C         bool           `json:"c"`
	PC        uint16         `json:"pc"`
	Steps     int            `json:"steps"`
	Halted    bool           `json:"halted"`
	Variables map[string]int `json:"variables"`
}

type CompileResponse struct {
	ID       string            `json:"id"`
	Assembly string            `json:"assembly"`
	Symbols  []compiler.Symbol `json:"symbols"`
	Bytes    int               `json:"bytes"`
	Machine  *MachineState     `json:"machine,omitempty"`
}

type CompileRouter struct {
	e       *echo.Echo
	opts    compiler.Options
	machine config.Machine
}

func NewCompileRouter(e *echo.Echo, cfg *config.Config) *CompileRouter {
	return &CompileRouter{
		e: e,
		opts: compiler.Options{
			BaseAddress: cfg.Compiler.BaseAddress,
			Comments:    cfg.Compiler.Comments,
			Logger:      slog.Default(),
		},
		machine: cfg.Machine,
	}
}

func (r *CompileRouter) Bind() {
	r.e.GET("/health", r.healthHandler)
	r.e.POST("/compile", r.compileHandler)
}

func (r *CompileRouter) healthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (r *CompileRouter) compileHandler(c echo.Context) error {
	var req CompileRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationWrap("invalid request body", err)
	}
	if strings.TrimSpace(req.Source) == "" {
		return NewValidation("source is required")
	}

	out, err := compiler.Build(req.Source, r.opts)
	if err != nil {
		return classify(err)
	}

	resp := CompileResponse{
		ID:       requestID(c),
		Assembly: out.Assembly,
		Symbols:  out.Symbols,
		Bytes:    len(out.Image.Code),
	}

	if req.Run {
		state, err := r.run(out)
		if err != nil {
			return classify(err)
		}
		resp.Machine = state
	}

	return c.JSON(http.StatusOK, resp)
}

func (r *CompileRouter) run(out *compiler.Output) (*MachineState, error) {
	vm := cpu.NewCPU()
	if err := vm.Load(out.Image.Code); err != nil {
		return nil, err
	}
	if err := vm.Run(r.machine.MaxSteps); err != nil {
		return nil, err
	}

	s := vm.State()
	vars := make(map[string]int, len(out.Symbols))
	for _, sym := range out.Symbols {
		if v, ok := s.Peek(sym.Address); ok {
			vars[sym.Name] = int(v)
		}
	}

	return &MachineState{
		A:         s.A,
		B:         s.B,
		Z:         s.Z,
		C:         s.C,
		PC:        s.PC,
		Steps:     s.Steps,
		Halted:    s.Halted,
		Variables: vars,
	}, nil
}
