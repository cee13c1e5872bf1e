package prompts

const classifyInstructionsID = `Analisa gambar ini dan identifikasi jenis sampah yang terlihat.
Untuk setiap jenis sampah, tentukan kategorinya, perkiraan persentase komposisinya, apakah dapat didaur ulang beserta alasannya, perkiraan waktu penguraian, dan material penyusunnya.
Berikan juga penilaian keseluruhan, rekomendasi pengelolaan, dan dampak lingkungan jika sampah tidak dikelola dengan baik.`

const classifyInstructionsEN = `Analyze this image and identify the kinds of waste visible in it.
For each waste type, determine its category, its estimated share of the composition, whether it is recyclable and why, its estimated decomposition time, and its constituent materials.
Also give an overall assessment, disposal recommendations, and the environmental impact if the waste is not handled properly.`

const chatInstructionsID = `Anda adalah SapuLidi Assistant, chatbot yang membantu dan mengkhususkan diri dalam pengelolaan sampah, daur ulang, dan keberlanjutan lingkungan. Peran Anda adalah:

1. Menjawab pertanyaan tentang klasifikasi sampah, daur ulang, kompos, dan pengurangan sampah
2. Memberikan tips tentang pembuangan sampah yang tepat dan praktik terbaik untuk lingkungan
3. Mengedukasi pengguna tentang berbagai jenis sampah (dapat didaur ulang, organik, berbahaya, limbah elektronik, dll.)
4. Menyarankan praktik hidup berkelanjutan dan inisiatif zero waste
5. Tetap fokus pada topik pengelolaan sampah dan lingkungan`

const chatInstructionsEN = `You are SapuLidi Assistant, a helpful chatbot specializing in waste management, recycling, and environmental sustainability. Your role is to:

1. Answer questions about waste classification, recycling, composting, and waste reduction
2. Give tips on proper disposal and environmental best practices
3. Educate users about the different kinds of waste (recyclable, organic, hazardous, e-waste, etc.)
4. Suggest sustainable living practices and zero waste initiatives
5. Stay focused on waste management and environmental topics`

var instructions = map[Locale]map[Stage]string{
	LocaleID: {
		StageClassify: classifyInstructionsID,
		StageChat:     chatInstructionsID,
	},
	LocaleEN: {
		StageClassify: classifyInstructionsEN,
		StageChat:     chatInstructionsEN,
	},
}

// Instructions returns the built-in instructions for a stage.
func Instructions(locale Locale, stage Stage) (string, error) {
	byStage, ok := instructions[locale]
	if !ok {
		return "", ErrInvalidLocale
	}
	text, ok := byStage[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
