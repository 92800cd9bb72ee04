package dispatch

import (
	"arbridge/internal/manager"
	"arbridge/pkg/types"
)

// decodeLoad builds a load request from a call's arguments. sourceKey is
// "modelUrl" for remote models and "assetPath" for bundled assets. Omitted
// transform components and isInteractive take their defaults here and
// nowhere else.
func decodeLoad(a args, sourceKey string) (manager.LoadRequest, error) {
	var req manager.LoadRequest
	id, err := a.str("modelId")
	if err != nil {
		return req, err
	}
	src, err := a.str(sourceKey)
	if err != nil {
		return req, err
	}
	def := types.DefaultTransform()
	tr := def
	if tr.Position, err = a.vec3("position", def.Position); err != nil {
		return req, err
	}
	if tr.Rotation, err = a.rotation("rotation", def.Rotation); err != nil {
		return req, err
	}
	scale, err := a.scale("scale")
	if err != nil {
		return req, err
	}
	if scale != nil {
		tr.Scale = *scale
	}
	interactive, err := a.optBool("isInteractive", true)
	if err != nil {
		return req, err
	}
	req = manager.LoadRequest{ID: id, Transform: tr, Interactive: interactive}
	if sourceKey == "assetPath" {
		req.Source.AssetPath = src
	} else {
		req.Source.URL = src
	}
	return req, nil
}

// decodePlace builds a placement. Position and rotation default like a load;
// an omitted scale keeps the model's current scale.
func decodePlace(a args) (string, manager.PlaceRequest, error) {
	var req manager.PlaceRequest
	id, err := a.str("modelId")
	if err != nil {
		return "", req, err
	}
	def := types.DefaultTransform()
	if req.Position, err = a.vec3("position", def.Position); err != nil {
		return "", req, err
	}
	if req.Rotation, err = a.rotation("rotation", def.Rotation); err != nil {
		return "", req, err
	}
	if req.Scale, err = a.scale("scale"); err != nil {
		return "", req, err
	}
	return id, req, nil
}
