package i18n

var catalogs = map[Lang]map[string]string{
	Arabic: {
		"site.title":              "ARABISH IMAGE CRAFT",
		"site.subtitle":           "اكتب وصفك بالعربية وسنترجمه. اختر صورة واحدة أو حتى 8 صور بأساليب مختلفة في آنٍ واحد.",
		"input.placeholder":       "مثال: كلب يمشي في حديقة عند الغروب بعدسة احترافية",
		"button.generate":         "اعرض الصورة",
		"button.generating":       "جارٍ التوليد...",
		"button.regenerate":       "إعادة الإنشاء",
		"button.download":         "تحميل",
		"button.video":            "فيديو",
		"button.share":            "مشاركة",
		"button.toggle.light":     "الوضع الفاتح",
		"button.toggle.dark":      "الوضع الداكن",
		"toast.empty":             "من فضلك اكتب وصفًا للصورة.",
		"toast.error":             "حدث خطأ أثناء التوليد. حاول مرة أخرى.",
		"toast.video.creating":    "جارٍ إنشاء فيديو",
		"toast.video.wait":        "قد يستغرق بضع ثوانٍ...",
		"toast.video.success":     "تم إنشاء الفيديو وتحميله.",
		"toast.video.error":       "تعذر إنشاء الفيديو في هذا المتصفح.",
		"toast.share.success":     "تم نسخ رابط الصورة",
		"toast.share.error":       "تعذر مشاركة الصورة",
		"toast.styles.full":       "يمكنك اختيار 8 أنماط كحد أقصى.",
		"history.title":           "المحفوظات",
		"history.clear":           "مسح الكل",
		"history.empty":           "لا توجد صور محفوظة بعد",
		"footer.developer":        "طور بواسطة",
		"footer.with":             "بـ",
		"pwa.install":             "احصل علي التطبيق",
		"pwa.download":            "حمّله الآن",
		"toast.download.warning":  "تنبيه",
		"toast.download.fallback": "تعذر تجهيز الصورة، سيتم تحميل الأصل.",
		"toast.image.error":       "خطأ",
		"toast.image.load.error":  "تعذر تحميل الصورة الآن. أعد المحاولة بعد ثوانٍ.",
		"toast.done":              "تم",
		"error.unauthorized":      "مفتاح API غير صالح أو مفقود.",
		"error.rate_limited":      "تم تجاوز عدد الطلبات المسموح به. حاول بعد دقيقة.",
		"error.bad_request":       "الطلب غير صالح.",
		"error.not_found":         "العنصر غير موجود.",
		"error.internal":          "حدث خطأ غير متوقع.",
	},
	English: {
		"site.title":              "ARABISH IMAGE CRAFT",
		"site.subtitle":           "Write your description in Arabic and we'll translate it. Choose one image or up to 8 images with different styles at once.",
		"input.placeholder":       "Example: A dog walking in a garden at sunset with professional lens",
		"button.generate":         "Generate Image",
		"button.generating":       "Generating...",
		"button.regenerate":       "Regenerate",
		"button.download":         "Download",
		"button.video":            "Video",
		"button.share":            "Share",
		"button.toggle.light":     "Light Mode",
		"button.toggle.dark":      "Dark Mode",
		"toast.empty":             "Please write an image description.",
		"toast.error":             "An error occurred during generation. Try again.",
		"toast.video.creating":    "Creating video",
		"toast.video.wait":        "This may take a few seconds...",
		"toast.video.success":     "Video created and downloaded.",
		"toast.video.error":       "Could not create video in this browser.",
		"toast.share.success":     "Image link copied",
		"toast.share.error":       "Could not share image",
		"toast.styles.full":       "You can select up to 8 styles.",
		"history.title":           "History",
		"history.clear":           "Clear All",
		"history.empty":           "No saved images yet",
		"footer.developer":        "Developed by",
		"footer.with":             "with",
		"pwa.install":             "Get App",
		"pwa.download":            "Download Now",
		"toast.download.warning":  "Warning",
		"toast.download.fallback": "Could not process image, downloading original.",
		"toast.image.error":       "Error",
		"toast.image.load.error":  "Could not load image now. Try again in few seconds.",
		"toast.done":              "Done",
		"error.unauthorized":      "Missing or invalid API key.",
		"error.rate_limited":      "Too many requests. Try again in a minute.",
		"error.bad_request":       "The request is invalid.",
		"error.not_found":         "Not found.",
	},
}
