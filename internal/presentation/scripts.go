package presentation

import "text/template"

// keynoteScript creates a Keynote document. defaultTitleItem and
// defaultBodyItem throw when the slide layout has no such placeholder.
var keynoteScript = template.Must(template.New("keynote").Parse(`
function run() {
  const data = {{.Data}};
  const app = Application('Keynote');
  app.activate();

  let doc;
  if (data.theme) {
    const themes = app.themes.whose({name: data.theme})();
    if (themes.length === 0) {
      return JSON.stringify({error: 'theme_not_found', themes: app.themes.name()});
    }
    doc = app.Document({documentTheme: themes[0]}).make();
  } else {
    doc = app.Document().make();
  }

  let skipped = 0;
  data.slides.forEach((s, i) => {
    let slide;
    if (i === 0) {
      slide = doc.slides[0];
    } else {
      slide = app.Slide();
      doc.slides.push(slide);
    }
    if (s.title) {
      try { slide.defaultTitleItem.objectText = s.title; } catch (e) { skipped++; }
    }
    if (s.body) {
      try { slide.defaultBodyItem.objectText = s.body; } catch (e) { skipped++; }
    }
  });

  if (data.savePath) {
    doc.save({in: Path(data.savePath)});
  }
  return JSON.stringify({slides: data.slides.length, skipped: skipped});
}
`))

// powerPointScript creates a PowerPoint presentation. Shapes are matched by
// name: "title" for the title, "content" or "body" for the body.
var powerPointScript = template.Must(template.New("powerpoint").Parse(`
function run() {
  const data = {{.Data}};
  const app = Application('Microsoft PowerPoint');
  app.activate();

  const pres = app.Presentation().make();

  function findShape(slide, keys) {
    for (const shape of slide.shapes()) {
      const name = (shape.name() || '').toLowerCase();
      if (keys.some(k => name.includes(k))) {
        return shape;
      }
    }
    return null;
  }

  let skipped = 0;
  data.slides.forEach((s, i) => {
    let slide;
    if (i === 0 && pres.slides.length > 0) {
      slide = pres.slides[0];
    } else {
      slide = app.Slide();
      pres.slides.push(slide);
    }
    if (s.title) {
      const shape = findShape(slide, ['title']);
      if (shape) { shape.textFrame.textRange.content = s.title; } else { skipped++; }
    }
    if (s.body) {
      const shape = findShape(slide, ['content', 'body']);
      if (shape) { shape.textFrame.textRange.content = s.body; } else { skipped++; }
    }
  });

  if (data.savePath) {
    pres.save({in: Path(data.savePath)});
  }
  return JSON.stringify({slides: data.slides.length, skipped: skipped});
}
`))

// exportScript opens a Keynote document, exports it and closes it again.
var exportScript = template.Must(template.New("export").Parse(`
function run() {
  const data = {{.Data}};
  const app = Application('Keynote');
  const doc = app.open(Path(data.input));
  try {
    doc.export({to: Path(data.output), as: data.format});
  } finally {
    doc.close({saving: 'no'});
  }
  return JSON.stringify({output: data.output});
}
`))
