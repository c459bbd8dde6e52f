package styles

import (
	"errors"
	"strings"
)

// ErrUnknownStyle is returned for ids that are not in the table.
var ErrUnknownStyle = errors.New("styles: unknown style")

// Style is a visual preset contributing a fixed suffix to the prompt.
type Style struct {
	ID          string `json:"id"`
	ArName      string `json:"ar_name"`
	EnName      string `json:"en_name"`
	EnSuffix    string `json:"en_suffix"`
	Description string `json:"description"`
}

// Name returns the display name for a language, defaulting to Arabic.
func (s Style) Name(lang string) string {
	if strings.EqualFold(lang, "en") {
		return s.EnName
	}
	return s.ArName
}

var table = [...]Style{
	{ID: "realistic", ArName: "واقعي", EnName: "Realistic", EnSuffix: "realistic, photorealistic, high quality", Description: "واقعية عالية تشبه التصوير الحقيقي."},
	{ID: "anime", ArName: "أنمي", EnName: "Anime", EnSuffix: "anime style, manga, japanese animation", Description: "أسلوب رسوم ياباني بملامح حادة وتلوين مسطح."},
	{ID: "3d", ArName: "ثلاثي الأبعاد", EnName: "3D", EnSuffix: "3D render, octane render, highly detailed", Description: "مظهر مجسم بإضاءة وظلال واقعية كالريندر."},
	{ID: "ultra-realistic", ArName: "واقعي فائق", EnName: "Ultra Realistic", EnSuffix: "hyperrealistic, ultra-detailed, professional photography, 8k", Description: "تفاصيل بالغة الدقة وإضاءة احترافية."},
	{ID: "abstract", ArName: "فن التجريد", EnName: "Abstract Art", EnSuffix: "abstract art, geometric shapes, bold colors", Description: "أشكال وألوان بلا تمثيل مباشر، تعبير بصري حر."},
	{ID: "comic", ArName: "أسلوب الكوميك", EnName: "Comic Style", EnSuffix: "comic style, inked lines, halftone shading", Description: "خطوط حبرية ونقاط هالف تون كصفحات القصص المصورة."},
	{ID: "pop-art", ArName: "البوب آرت", EnName: "Pop Art", EnSuffix: "pop art, bold outlines, ben-day dots, vibrant colors", Description: "ألوان صاخبة وخطوط واضحة بروح آندي وارهول."},
	{ID: "pencil", ArName: "رسم بالقلم الرصاص", EnName: "Pencil Sketch", EnSuffix: "pencil sketch, graphite drawing, cross-hatching", Description: "محاكاة الرسم بالرصاص مع تظليل وتحبير خفيف."},
	{ID: "oil", ArName: "تأثير الزيت على اللوحة", EnName: "Oil Painting", EnSuffix: "oil painting, brush strokes, canvas texture", Description: "ضربات فرشاة ولمس قماش كلوحة زيتية."},
	{ID: "bw-photo", ArName: "فوتوغرافيا أبيض وأسود", EnName: "Black & White", EnSuffix: "black and white photography, monochrome, high contrast, film grain", Description: "أبيض وأسود بتباين ولمسة فوتوغرافية كلاسيكية."},
	{ID: "neon", ArName: "تأثير الألوان النيون", EnName: "Neon Colors", EnSuffix: "neon colors, glowing lights, cyberpunk", Description: "أضواء متوهجة وألوان نيون لجو سايبربنك."},
	{ID: "cinematic", ArName: "السينمائي", EnName: "Cinematic Look", EnSuffix: "cinematic look, dramatic lighting, color grading, anamorphic bokeh", Description: "دراما لونية وعمق مجال قريب من الأفلام."},
	{ID: "cartoon", ArName: "الرسوم الكرتونية", EnName: "Cartoon Style", EnSuffix: "cartoon style, simple shapes, flat shading", Description: "أشكال بسيطة وتلوين مسطح كأفلام كرتون."},
	{ID: "expressive-realism", ArName: "الواقعي التعبيري", EnName: "Expressive Realism", EnSuffix: "expressive realism, dynamic brushwork, emotional lighting", Description: "مزج واقعية مع تعبيرية وحركة وإحساس."},
	{ID: "surrealism", ArName: "الفن السريالي", EnName: "Surrealism", EnSuffix: "surrealism, dreamlike, impossible scenes, Salvador Dali style", Description: "مشاهد خيالية تحاكي أحلامًا وأفكارًا غير ممكنة."},
}

var index = func() map[string]int {
	m := make(map[string]int, len(table))
	for i, s := range table {
		m[s.ID] = i
	}
	return m
}()

// All returns a copy of the style table in display order.
func All() []Style {
	out := make([]Style, len(table))
	copy(out, table[:])
	return out
}

// Lookup finds a style by id.
func Lookup(id string) (Style, bool) {
	i, ok := index[strings.TrimSpace(strings.ToLower(id))]
	if !ok {
		return Style{}, false
	}
	return table[i], true
}

// Default is the style used when nothing is selected.
func Default() Style { return table[0] }
