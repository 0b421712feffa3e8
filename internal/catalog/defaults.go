package catalog

// DECE 内置目录数据，数据库目录表为空时使用

var defaultCourses = []Course{
	{Name: "INICIAL I-II", Key: "INICIAL_I-II"},
	{Name: "PRIMERO DE BASICA", Key: "PRIMERO_DE_BASICA"},
	{Name: "SEGUNDO DE BASICA", Key: "SEGUNDO_DE_BASICA"},
	{Name: "TERCERO DE BASICA", Key: "TERCERO_DE_BASICA"},
	{Name: "CUARTO DE BASICA", Key: "CUARTO_DE_BASICA"},
	{Name: "QUINTO DE BASICA", Key: "QUINTO_DE_BASICA"},
	{Name: "SEXTO DE BASICA", Key: "SEXTO_DE_BASICA"},
	{Name: "SEPTIMO DE BASICA", Key: "SEPTIMO_DE_BASICA"},
	{Name: "OCTAVO DE BASICA", Key: "OCTAVO_DE_BASICA"},
	{Name: "NOVENO DE BASICA", Key: "NOVENO_DE_BASICA"},
	{Name: "DECIMO DE BASICA", Key: "DECIMO_DE_BASICA"},
	{Name: "PRIMERO BACHILLERATO", Key: "PRIMERO_BACHILLERATO"},
	{Name: "SEGUNDO BACHILLERATO", Key: "SEGUNDO_BACHILLERATO"},
	{Name: "TERCERO BACHILLERATO", Key: "TERCERO_BACHILLERATO"},
}

var defaultTeachers = []Teacher{
	{Code: "AE", Name: "ACOSTA ESTEFANIA"},
	{Code: "AA", Name: "ANDRES ARANA"},
	{Code: "AV", Name: "AÑAMISE VERONICA"},
	{Code: "BM", Name: "BAUTISTA MARLON"},
	{Code: "BD", Name: "BECERRA DARWIN"},
	{Code: "BL", Name: "BUNSHI LIZBETH"},
	{Code: "CL", Name: "CHICAIZA LUIS"},
	{Code: "LC1", Name: "LAURA GOMEZ"},
	{Code: "LC2", Name: "LORENA CAMPOS"},
	{Code: "LC", Name: "LUZON CARMEN"},
	{Code: "MS", Name: "MALLA SANTIAGO"},
	{Code: "PK", Name: "PADILLA KAROLYNE"},
	{Code: "PE", Name: "PUCO EVELYN"},
	{Code: "QR", Name: "QUIMBITA ROSALVA"},
	{Code: "DR", Name: "REYES DANIEL"},
	{Code: "RM", Name: "REYES MIRYAM"},
	{Code: "SN", Name: "SOPA NESTOR"},
	{Code: "VP", Name: "VALENCIA PILAR"},
	{Code: "VE", Name: "Veliz Elvira"},
}

var defaultSubjects = []Subject{
	{Abbr: "MAT", Name: "MATEMÁTICAS"},
	{Abbr: "LEN", Name: "LENGUA Y LITERATURA"},
	{Abbr: "ING", Name: "INGLÉS"},
	{Abbr: "CCNN", Name: "CIENCIAS NATURALES"},
	{Abbr: "CCSS", Name: "CIENCIAS SOCIALES"},
	{Abbr: "EFI", Name: "EDUCACIÓN FÍSICA"},
	{Abbr: "ECA", Name: "EDUCACIÓN CULTURAL Y ARTÍSTICA"},
	{Abbr: "QUI", Name: "QUÍMICA"},
	{Abbr: "BIO", Name: "BIOLOGÍA"},
	{Abbr: "FK", Name: "FÍSICA"},
	{Abbr: "HIS", Name: "HISTORIA"},
	{Abbr: "FIL", Name: "FILOSOFÍA"},
	{Abbr: "EMP", Name: "EMPRENDIMIENTO"},
	{Abbr: "OVP", Name: "ORIENTACIÓN VOCACIONAL Y PROFESIONAL"},
}

// Default 返回内置 DECE 目录
func Default() *Catalog {
	return New(defaultCourses, defaultTeachers, defaultSubjects)
}
