package biz

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"ambassador-tracker/internal/conf"
	"ambassador-tracker/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

const (
	iframeStyle = "border: none; position: fixed; right: 20px; top: 50%; transform: translateY(-50%); z-index: 9999; min-width: 44px; max-width: 400px;"
	iframeTitle = "University Navigation Widget"
)

// The same placement as iframeStyle, as style objects.
var (
	reactStyle = []string{
		"border: 'none'", "position: 'fixed'", "right: '20px'", "top: '50%'",
		"transform: 'translateY(-50%)'", "zIndex: 9999", "minWidth: '44px'", "maxWidth: '400px'",
	}
	vueStyle     = reactStyle
	angularStyle = []string{
		"'border': 'none'", "'position': 'fixed'", "'right': '20px'", "'top': '50%'",
		"'transform': 'translateY(-50%)'", "'z-index': '9999'", "'min-width': '44px'", "'max-width': '400px'",
	}
)

// GeneratedWidget is a widget together with the snippets needed to embed it.
type GeneratedWidget struct {
	Widget       *domain.Widget
	EmbedCode    string
	EmbedFormats map[string]string
	PreviewURL   string
}

// WidgetUsecase manages the widget directory.
type WidgetUsecase struct {
	repo    domain.WidgetRepository
	baseURL string
	log     *log.Helper
}

func NewWidgetUsecase(repo domain.WidgetRepository, c *conf.Tracking, logger log.Logger) *WidgetUsecase {
	baseURL := "http://localhost:8000"
	if c != nil && c.PublicBaseUrl != "" {
		baseURL = strings.TrimRight(c.PublicBaseUrl, "/")
	}
	return &WidgetUsecase{
		repo:    repo,
		baseURL: baseURL,
		log:     log.NewHelper(log.With(logger, "module", "biz/widget")),
	}
}

// Create registers a widget. A university keeps a single widget: generating
// again replaces its config and keeps the id. Anonymous widgets are always new.
func (uc *WidgetUsecase) Create(ctx context.Context, ownerID string, config json.RawMessage) (*GeneratedWidget, error) {
	cfg, err := domain.NormalizeConfig(config)
	if err != nil {
		return nil, domain.ErrInvalidConfig
	}

	ownerID = strings.TrimSpace(ownerID)
	if ownerID != "" {
		existing, err := uc.repo.FindByOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if err := uc.repo.UpdateConfig(ctx, existing.ID, cfg); err != nil {
				return nil, err
			}
			existing.Config = cfg
			uc.log.WithContext(ctx).Infof("widget %s regenerated for %s", existing.ID, ownerID)
			return uc.generated(existing), nil
		}
	}

	now := time.Now().UTC()
	w := &domain.Widget{
		ID:        uuid.NewString(),
		Config:    cfg,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ownerID != "" {
		w.UniversityID = &ownerID
	}
	if err := uc.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	uc.log.WithContext(ctx).Infof("widget %s created", w.ID)
	return uc.generated(w), nil
}

// Get returns ErrWidgetNotFound for unknown ids.
func (uc *WidgetUsecase) Get(ctx context.Context, id string) (*domain.Widget, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrWidgetNotFound
	}
	w, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.ErrWidgetNotFound
	}
	return w, nil
}

func (uc *WidgetUsecase) GetByOwner(ctx context.Context, ownerID string) (*GeneratedWidget, error) {
	w, err := uc.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.ErrWidgetNotFound
	}
	return uc.generated(w), nil
}

func (uc *WidgetUsecase) MarkVerified(ctx context.Context, id, domainName string, at time.Time) error {
	return uc.repo.MarkVerified(ctx, id, domainName, at)
}

// OwnedVerified returns the widget only if ownerID owns it and it has been
// verified. Every other case is ErrWidgetNotVerified, so callers cannot probe
// for foreign widget ids.
func (uc *WidgetUsecase) OwnedVerified(ctx context.Context, widgetID, ownerID string) (*domain.Widget, error) {
	w, err := uc.repo.FindByID(ctx, widgetID)
	if err != nil {
		return nil, err
	}
	if w == nil || !w.OwnedBy(ownerID) || !w.Verified {
		return nil, domain.ErrWidgetNotVerified
	}
	return w, nil
}

// PreviewURL is the public page rendering the widget.
func (uc *WidgetUsecase) PreviewURL(id string) string {
	return fmt.Sprintf("%s/university/widget/%s", uc.baseURL, id)
}

func (uc *WidgetUsecase) generated(w *domain.Widget) *GeneratedWidget {
	src := template.HTMLEscapeString(uc.PreviewURL(w.ID))
	iframe := fmt.Sprintf(`<iframe
  src="%s"
  width="auto"
  height="300"
  frameborder="0"
  scrolling="no"
  style="%s"
  title="%s">
</iframe>`, src, iframeStyle, iframeTitle)

	return &GeneratedWidget{
		Widget:    w,
		EmbedCode: iframe,
		EmbedFormats: map[string]string{
			"html":      iframe,
			"react":     frameworkIframe(`src="%s"`, "frameBorder", "style={{\n%s\n  }}", "\n/>", src, reactStyle),
			"vue":       frameworkIframe(`:src="'%s'"`, "frameborder", ":style=\"{\n%s\n  }\"", ">\n</iframe>", src, vueStyle),
			"angular":   frameworkIframe(`[src]="'%s'"`, "frameborder", "[style]=\"{\n%s\n  }\"", ">\n</iframe>", src, angularStyle),
			"wordpress": "<!-- Add this to your WordPress theme's footer.php or use a plugin -->\n" + iframe,
			"shopify":   "<!-- Add this to your Shopify theme's layout/theme.liquid file before </body> -->\n" + iframe,
		},
		PreviewURL: uc.PreviewURL(w.ID),
	}
}

// frameworkIframe renders the iframe with a framework's binding syntax for
// src and an object-valued style.
func frameworkIframe(srcAttr, borderAttr, styleAttr, closing, src string, style []string) string {
	return fmt.Sprintf(`<iframe
  %s
  width="auto"
  height="300"
  %s="0"
  scrolling="no"
  %s
  title="%s"%s`,
		fmt.Sprintf(srcAttr, src),
		borderAttr,
		fmt.Sprintf(styleAttr, "    "+strings.Join(style, ",\n    ")),
		iframeTitle,
		closing,
	)
}
